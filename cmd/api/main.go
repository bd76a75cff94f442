package main

import (
    "log/slog"
    "net/http"
    "os"
    "strings"
    "time"

    "shipquote/internal/config"
    "shipquote/internal/job"
    "shipquote/internal/rate"
    "shipquote/internal/server"
)

func main() {
    cfg := config.Load()

    logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
        Level: logLevel(cfg.LogLevel),
    }))
    slog.SetDefault(logger)

    tables, err := rate.LoadTables(cfg.RateTablesDir)
    if err != nil {
        logger.Error("failed to load rate tables", "error", err)
        os.Exit(1)
    }

    pricer := rate.NewPricer(tables)
    store := job.NewStore(cfg.ProcessDelay)
    h := server.New(store, pricer, cfg.AllowedOrigins)

    srv := &http.Server{
        Addr:              ":" + cfg.Port,
        Handler:           h,
        ReadTimeout:       10 * time.Second,
        ReadHeaderTimeout: 10 * time.Second,
        WriteTimeout:      20 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    logger.Info("api listening",
        "port", cfg.Port,
        "process_delay", cfg.ProcessDelay.String(),
        "tables_dir", cfg.RateTablesDir,
    )
    if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        logger.Error("server error", "error", err)
        os.Exit(1)
    }
}

func logLevel(s string) slog.Level {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "debug":
        return slog.LevelDebug
    case "warn":
        return slog.LevelWarn
    case "error":
        return slog.LevelError
    default:
        return slog.LevelInfo
    }
}
