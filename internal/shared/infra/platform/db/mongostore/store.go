package mongostore

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/scopequery/shared/domain"
	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
)

// idColumn se guarda en mongo como _id.
const (
	idColumn = "id"
	idField  = "_id"
)

// Store implementa sharedQuery.Store sobre MongoDB. Cada Source es una colección.
type Store struct {
	db     *mongo.Database
	logger *zap.Logger
}

// New comprueba la conexión antes de devolver el store.
func New(ctx context.Context, client *mongo.Client, dbName string, logger *zap.Logger) (*Store, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: client.Database(dbName), logger: logger}, nil
}

func (s *Store) Count(ctx context.Context, stmt sharedQuery.Statement) (int64, error) {
	filter, err := Filter(stmt.Predicate)
	if err != nil {
		return 0, err
	}
	return s.db.Collection(stmt.Source).CountDocuments(ctx, filter)
}

func (s *Store) Fetch(ctx context.Context, stmt sharedQuery.Statement) ([]sharedQuery.Row, error) {
	filter, err := Filter(stmt.Predicate)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetProjection(Projection(stmt.Columns))
	if len(stmt.Order) > 0 {
		opts.SetSort(Sort(stmt.Order))
	}
	if stmt.Offset > 0 {
		opts.SetSkip(int64(stmt.Offset))
	}
	if stmt.Limit > 0 {
		opts.SetLimit(int64(stmt.Limit))
	}

	cursor, err := s.db.Collection(stmt.Source).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]sharedQuery.Row, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, ToRow(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Filter traduce el predicado a un $and de condiciones simples.
// Un $and explícito evita que dos límites sobre el mismo campo se pisen.
func Filter(pred sharedDomain.Predicate) (bson.D, error) {
	conds := pred.ToConditions()
	if len(conds) == 0 {
		return bson.D{}, nil
	}

	and := make(bson.A, 0, len(conds))
	for _, c := range conds {
		cond, err := condition(c)
		if err != nil {
			return nil, err
		}
		and = append(and, cond)
	}
	return bson.D{{Key: "$and", Value: and}}, nil
}

func condition(c sharedDomain.Criterion) (bson.D, error) {
	field := fieldName(c.Field)

	switch c.Op {
	case sharedDomain.OpIsNull:
		// null en mongo coincide con null y con campo inexistente
		return bson.D{{Key: field, Value: nil}}, nil
	case sharedDomain.OpEq:
		return bson.D{{Key: field, Value: bson.D{{Key: "$eq", Value: c.Value}}}}, nil
	case sharedDomain.OpGte:
		return bson.D{{Key: field, Value: bson.D{{Key: "$gte", Value: c.Value}}}}, nil
	case sharedDomain.OpLte:
		return bson.D{{Key: field, Value: bson.D{{Key: "$lte", Value: c.Value}}}}, nil
	case sharedDomain.OpContains, sharedDomain.OpIContains:
		text, ok := c.Value.(string)
		if !ok {
			return nil, fmt.Errorf("contains on %s requires a string", c.Field)
		}
		regex := bson.D{{Key: "$regex", Value: regexp.QuoteMeta(text)}}
		if c.Op == sharedDomain.OpIContains {
			regex = append(regex, bson.E{Key: "$options", Value: "i"})
		}
		return bson.D{{Key: field, Value: regex}}, nil
	default:
		return nil, fmt.Errorf("unsupported operator %s", c.Op)
	}
}

// Sort traduce el orden resuelto a bson. El orden de las claves se conserva.
func Sort(order []sharedQuery.SortSpec) bson.D {
	sort := make(bson.D, 0, len(order))
	for _, o := range order {
		dir := 1
		if o.Desc() {
			dir = -1
		}
		sort = append(sort, bson.E{Key: fieldName(o.Column), Value: dir})
	}
	return sort
}

// Projection limita el documento a las columnas declaradas.
func Projection(columns []string) bson.D {
	proj := make(bson.D, 0, len(columns))
	for _, col := range columns {
		proj = append(proj, bson.E{Key: fieldName(col), Value: 1})
	}
	return proj
}

// ToRow convierte un documento a Row devolviendo _id como id.
func ToRow(doc bson.M) sharedQuery.Row {
	row := make(sharedQuery.Row, len(doc))
	for k, v := range doc {
		if k == idField {
			k = idColumn
		}
		row[k] = v
	}
	return row
}

func fieldName(column string) string {
	if column == idColumn {
		return idField
	}
	return column
}

var _ sharedQuery.Store = (*Store)(nil)
