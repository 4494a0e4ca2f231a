package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loghive/loghive/internal/ingest"
	"github.com/loghive/loghive/internal/logstore"
	"github.com/loghive/loghive/internal/ratelimit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loghived",
		Short: "A concurrent TCP log ingestion service",
		Long:  "loghived accepts |-delimited log lines over TCP, rate limits them per client, and appends accepted entries to a shared log destination.",
		RunE:  runServe,
	}

	flags := rootCmd.Flags()
	flags.String("addr", ":9000", "listen address (e.g. :9000 or 0.0.0.0:9000)")
	flags.String("metrics-addr", ":9090", "metrics listen address (empty disables)")
	flags.String("log-file", "loghive.log", "path of the append-only log destination")
	flags.String("store", "file", "log store backend: file, sqlite or none")
	flags.Int("rate-limit", 10, "max accepted messages per client per window")
	flags.Duration("rate-window", time.Second, "rate limit window length")
	flags.Int("max-clients", ratelimit.DefaultMaxClients, "max client rate states tracked at once")
	flags.Int64("max-conns", 256, "max simultaneous connections (0 = unlimited)")
	flags.Duration("idle-timeout", 0, "per-read idle timeout (0 = none)")
	flags.Float64("accept-rate", 0, "max accepted connections per second (0 = unlimited)")
	flags.Int("accept-burst", 16, "accept rate burst size")

	cobra.CheckErr(viper.BindPFlags(flags))
	viper.SetEnvPrefix("LOGHIVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	rateLimit := viper.GetInt("rate-limit")
	if rateLimit <= 0 {
		return fmt.Errorf("rate-limit must be positive, got %d", rateLimit)
	}

	sink, err := openSink(viper.GetString("store"), viper.GetString("log-file"))
	if err != nil {
		return err
	}
	defer sink.Close()

	limiter := ratelimit.New(rateLimit, viper.GetDuration("rate-window"), viper.GetInt("max-clients"))

	srv := ingest.NewServer(ingest.Config{
		Addr:        viper.GetString("addr"),
		MaxConns:    viper.GetInt64("max-conns"),
		IdleTimeout: viper.GetDuration("idle-timeout"),
		AcceptRate:  viper.GetFloat64("accept-rate"),
		AcceptBurst: viper.GetInt("accept-burst"),
	}, limiter, sink, logger)

	if err := srv.Start(); err != nil {
		logger.Error("failed to start server", "error", err)
		return err
	}

	if addr := viper.GetString("metrics-addr"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	srv.Stop()
	return nil
}

func openSink(store, path string) (logstore.Sink, error) {
	switch store {
	case "file":
		return logstore.NewFileSink(path)
	case "sqlite":
		return logstore.NewSQLiteSink(path)
	case "none":
		return logstore.NullSink{}, nil
	default:
		return nil, fmt.Errorf("unknown store %q (want file, sqlite or none)", store)
	}
}
