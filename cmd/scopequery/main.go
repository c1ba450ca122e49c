package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/davicafu/scopequery/internal/config"
)

// ---------------- Main ----------------
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:           "scopequery",
		Short:         "Scoped, filtered and paginated queries over tasks and users",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP query API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(v)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	flags := serve.Flags()
	flags.String("http-port", "", "HTTP port (SCOPEQUERY_HTTP_PORT)")
	flags.String("store-driver", "", "sqlite | postgres | mongodb (SCOPEQUERY_STORE_DRIVER)")
	flags.String("audit-sink", "", "none | memory | kafka | clickhouse (SCOPEQUERY_AUDIT_SINK)")
	flags.String("log-level", "", "debug | info | warn | error (SCOPEQUERY_LOG_LEVEL)")
	flags.Duration("query-timeout", 0, "per-query timeout (SCOPEQUERY_QUERY_TIMEOUT)")
	for key, flag := range map[string]string{
		"http_port":     "http-port",
		"store_driver":  "store-driver",
		"audit_sink":    "audit-sink",
		"log_level":     "log-level",
		"query_timeout": "query-timeout",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	ingest := &cobra.Command{
		Use:   "ingest-audit",
		Short: "Copy audit events from Kafka into ClickHouse",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(v)
			if err != nil {
				return err
			}
			return runIngestor(cmd.Context(), cfg)
		},
	}

	root.AddCommand(serve, ingest)
	return root
}
