package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const TasksCollection = "tasks"

// taskIndexes cubre el scope (organization_id, assignee_id) y el orden por defecto.
func taskIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("org_created"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "assignee_id", Value: 1}},
			Options: options.Index().SetName("org_assignee"),
		},
	}
}

// EnsureTaskIndexes crea los índices de la colección de tareas (idempotente).
func EnsureTaskIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(TasksCollection).Indexes().CreateMany(ctx, taskIndexes()); err != nil {
		return fmt.Errorf("could not create task indexes: %w", err)
	}
	return nil
}
