package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/davicafu/scopequery/internal/config"
	"github.com/davicafu/scopequery/internal/shared/infra/audit"
	"github.com/davicafu/scopequery/pkg/logger"
)

// runIngestor mueve la auditoría publicada en Kafka a ClickHouse, donde /audit/query la consulta.
func runIngestor(ctx context.Context, cfg *config.Config) error {
	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	if len(cfg.KafkaBrokers) == 0 {
		return fmt.Errorf("kafka brokers are required")
	}

	var cleanup closer
	defer cleanup.closeAll()

	chLog, err := openClickHouse(ctx, cfg, log, &cleanup)
	if err != nil {
		return err
	}

	reader := audit.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
	cleanup.add(func() { _ = reader.Close() })

	log.Info("🚀 Ingesta de auditoría Kafka → ClickHouse",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group", cfg.KafkaGroupID),
	)
	return audit.NewKafkaIngestor(reader, chLog, log).Run(ctx)
}
