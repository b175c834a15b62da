package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brownie44l1/rangeserve/internal/accesslog"
	"github.com/Brownie44l1/rangeserve/internal/logger"
	"github.com/Brownie44l1/rangeserve/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "httpserver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config := server.DefaultConfig()

	flag.IntVar(&config.Port, "port", config.Port, "TCP port to listen on")
	flag.StringVar(&config.Root, "root", config.Root, "directory to serve")
	flag.StringVar(&config.Index, "index", config.Index, "file served for directory paths")
	flag.DurationVar(&config.ReadTimeout, "read-timeout", config.ReadTimeout, "deadline for reading the request head")
	flag.DurationVar(&config.WriteTimeout, "write-timeout", config.WriteTimeout, "deadline for writing the response")
	flag.IntVar(&config.MaxHeaderBytes, "max-header-bytes", config.MaxHeaderBytes, "largest accepted request head")
	once := flag.Bool("once", true, "serve a single connection, then exit")
	accessDB := flag.String("access-db", "", "SQLite file for the access log (empty disables it)")
	logLevel := flag.String("log-level", "info", "minimum log level: debug, info, warn, error")
	verbose := flag.Bool("v", false, "debug logging (same as -log-level=debug)")
	flag.Parse()

	level := logger.ParseLevel(*logLevel)
	if *verbose {
		level = logger.LevelDebug
	}
	log := logger.New(os.Stdout, level)

	opts := []server.Option{server.WithLogger(log)}
	if *accessDB != "" {
		store, err := accesslog.Open(*accessDB)
		if err != nil {
			return fmt.Errorf("open access log: %w", err)
		}
		defer store.Close()
		opts = append(opts, server.WithAccessLog(store))
	}

	srv, err := server.New(config, opts...)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Listen(ctx); err != nil {
		return err
	}

	log.Info("serving",
		logger.F("root", config.Root),
		logger.F("port", srv.Port()),
		logger.F("once", *once),
	)

	if *once {
		err = srv.ServeOne(ctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	} else {
		err = srv.Serve(ctx)
	}

	stats := srv.Stats()
	log.Info("server stopped",
		logger.F("requests", stats.RequestsTotal),
		logger.F("partial", stats.Partial),
		logger.F("not_found", stats.NotFound),
		logger.F("unsatisfiable", stats.Unsatisfiable),
		logger.F("errors_5xx", stats.Errors5xx),
		logger.F("bytes_served", stats.BytesServed),
		logger.F("avg_latency", stats.AverageLatency.Round(time.Microsecond).String()),
	)
	return err
}
