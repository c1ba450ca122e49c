package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	// _ "github.com/mattn/go-sqlite3" // requires gcc
	_ "modernc.org/sqlite"

	"github.com/davicafu/scopequery/internal/config"
	sharedApp "github.com/davicafu/scopequery/internal/shared/application"
	"github.com/davicafu/scopequery/internal/shared/infra/audit"
	sharedHTTP "github.com/davicafu/scopequery/internal/shared/infra/http"
	"github.com/davicafu/scopequery/internal/shared/infra/metrics"
	"github.com/davicafu/scopequery/internal/shared/infra/platform/db/mongostore"
	"github.com/davicafu/scopequery/internal/shared/infra/platform/db/sqlstore"
	taskApp "github.com/davicafu/scopequery/internal/task/application"
	taskHttp "github.com/davicafu/scopequery/internal/task/infra/inbound/http"
	taskMongo "github.com/davicafu/scopequery/internal/task/infra/outbound/db/mongodb"
	taskPostgres "github.com/davicafu/scopequery/internal/task/infra/outbound/db/postgre"
	taskSQLite "github.com/davicafu/scopequery/internal/task/infra/outbound/db/sqlite"
	userApp "github.com/davicafu/scopequery/internal/user/application"
	userHttp "github.com/davicafu/scopequery/internal/user/infra/inbound/http"
	userPostgres "github.com/davicafu/scopequery/internal/user/infra/outbound/db/postgre"
	userSQLite "github.com/davicafu/scopequery/internal/user/infra/outbound/db/sqlite"
	"github.com/davicafu/scopequery/pkg/logger"
	sharedBus "github.com/davicafu/scopequery/shared/platform/bus"
	sharedQuery "github.com/davicafu/scopequery/shared/platform/query"
	"github.com/davicafu/scopequery/shared/utils"
)

// closer acumula los recursos a liberar al apagar, en orden inverso.
type closer []func()

func (c *closer) add(fn func()) { *c = append(*c, fn) }

func (c closer) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	log, err := logger.Init(cfg.LogLevel) // inicializa zap
	if err != nil {
		return err
	}
	defer log.Sync() // flush buffers al salir

	var cleanup closer
	defer cleanup.closeAll()

	// ---------------- Store ----------------
	store, err := openStore(ctx, cfg, log, &cleanup)
	if err != nil {
		return err
	}

	// ---------------- Auditoría y métricas ----------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sinks, auditDB, err := openAuditSinks(ctx, cfg, log, &cleanup)
	if err != nil {
		return err
	}
	observer := sharedApp.Observers{metrics.NewQueryMetrics(reg), audit.NewRecorder(log, sinks...)}

	// --------------- Servicios --------------
	taskService, err := taskApp.NewTaskService(store, observer, cfg.QueryTimeout, log)
	if err != nil {
		return err
	}
	userService, err := userApp.NewUserService(store, observer, cfg.QueryTimeout, log)
	if err != nil {
		return err
	}

	// ---------------- HTTP ----------------
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), sharedHTTP.RequestLogger(log))

	auth := sharedHTTP.RequirePrincipal(sharedHTTP.NewTokenVerifier(cfg.JWTSecret), log)
	taskHttp.RegisterTaskRoutes(r, taskHttp.NewTaskHandler(taskService), auth)
	userHttp.RegisterUserRoutes(r, userHttp.NewUserHandler(userService), auth)

	if auditDB != nil {
		// el log de auditoría se consulta con el mismo motor, sin observar (no se audita a sí mismo)
		engine, err := sharedQuery.NewEngine(audit.Entity(), sqlstore.New(auditDB, sqlstore.ClickHouse, log), log)
		if err != nil {
			return err
		}
		audit.RegisterAuditRoutes(r, sharedApp.NewQueryService(engine, nil, cfg.QueryTimeout, log), auth)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": cfg.StoreDriver, "audit": cfg.AuditSink})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info("✅ Servidor HTTP escuchando", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Apagando servidor HTTP")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger, cleanup *closer) (sharedQuery.Store, error) {
	if cfg.StoreDriver == config.StoreMongoDB {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		cleanup.add(func() { _ = client.Disconnect(context.Background()) })
		store, err := mongostore.New(ctx, client, cfg.MongoDB, log)
		if err != nil {
			return nil, err
		}
		if err := taskMongo.EnsureTaskIndexes(ctx, client.Database(cfg.MongoDB)); err != nil {
			return nil, err
		}
		return store, nil
	}

	dialect, err := sqlstore.DialectByName(cfg.StoreDriver)
	if err != nil {
		return nil, err
	}
	dsn := cfg.SQLitePath
	if dialect.Name == sqlstore.Postgres.Name {
		dsn = cfg.PostgresDSN
	}

	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dialect.Name, err)
	}
	cleanup.add(func() { db.Close() })
	if err := waitFor(ctx, log, dialect.Name, db.PingContext); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", dialect.Name, err)
	}

	switch dialect.Name {
	case sqlstore.Postgres.Name:
		if err := taskPostgres.InitPostgresTaskSchema(ctx, db); err != nil {
			return nil, err
		}
		if err := userPostgres.InitPostgresUserSchema(ctx, db); err != nil {
			return nil, err
		}
	case sqlstore.SQLite.Name:
		if err := taskSQLite.InitSQLiteTaskSchema(ctx, db); err != nil {
			return nil, err
		}
		if err := userSQLite.InitSQLiteUserSchema(ctx, db); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("store driver %q has no schema bootstrap", dialect.Name)
	}
	return sqlstore.New(db, dialect, log), nil
}

// openAuditSinks devuelve también la conexión de ClickHouse cuando existe, para exponer /audit/query.
func openAuditSinks(ctx context.Context, cfg *config.Config, log *zap.Logger, cleanup *closer) ([]sharedBus.EventPublisher, *sql.DB, error) {
	switch cfg.AuditSink {
	case config.AuditKafka:
		log.Info("🚀 Usando Kafka para la auditoría", zap.Strings("brokers", cfg.KafkaBrokers))
		writer := audit.NewKafkaWriter(cfg.KafkaBrokers)
		cleanup.add(func() { _ = writer.Close() })
		return []sharedBus.EventPublisher{audit.NewKafkaPublisher(writer, cfg.KafkaTopic, log)}, nil, nil

	case config.AuditClickHouse:
		chLog, err := openClickHouse(ctx, cfg, log, cleanup)
		if err != nil {
			return nil, nil, err
		}
		return []sharedBus.EventPublisher{chLog}, chLog.DB(), nil

	case config.AuditMemory:
		log.Info("⚡️ Auditoría en memoria (canales de Go)")
		bus := audit.NewInMemoryEventBus()
		events := bus.Subscribe(100)
		go func() {
			for payload := range events {
				log.Debug("Consulta auditada", zap.ByteString("event", payload))
			}
		}()
		return []sharedBus.EventPublisher{bus}, nil, nil

	default:
		return nil, nil, nil
	}
}

func openClickHouse(ctx context.Context, cfg *config.Config, log *zap.Logger, cleanup *closer) (*audit.ClickHouseAuditLog, error) {
	chLog := audit.NewClickHouseAuditLog(cfg.CHAddr, cfg.CHDatabase)
	cleanup.add(func() { chLog.DB().Close() })
	if err := waitFor(ctx, log, "clickhouse", chLog.Ping); err != nil {
		return nil, err
	}
	if err := chLog.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to init audit schema: %w", err)
	}
	return chLog, nil
}

// waitFor reintenta ping mientras la dependencia arranca (docker-compose).
func waitFor(ctx context.Context, log *zap.Logger, name string, ping func(context.Context) error) error {
	return utils.Retry(ctx, 5, 500*time.Millisecond, func(ctx context.Context) error {
		err := ping(ctx)
		if err != nil {
			log.Warn("Dependencia no disponible, reintentando", zap.String("dependency", name), zap.Error(err))
		}
		return err
	})
}
