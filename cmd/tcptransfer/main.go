package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Brownie44l1/rangeserve/internal/logger"
	"github.com/Brownie44l1/rangeserve/internal/transfer"
)

const usage = `usage:
  tcptransfer server [flags] <port>
  tcptransfer client [flags] <host> <port>
  tcptransfer generate [flags] <size>

flags:
  -in          file sent by client and written by generate (client-input.dat)
  -out         file written by server (server-output.dat)
  -chunk       max bytes per send (100000)
  -delay       pause between sends (100ms)
  -read-chunk  max bytes per receive (1024)
  -alphabet    characters cycled by generate
  -log-level   debug, info, warn or error (info)
  -v           debug logging`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "tcptransfer: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Println(usage)
		return fmt.Errorf("missing command")
	}

	cfg := transfer.DefaultConfig()
	fs := flag.NewFlagSet(args[0], flag.ExitOnError)
	fs.Usage = func() { fmt.Fprintln(fs.Output(), usage) }
	fs.StringVar(&cfg.Input, "in", cfg.Input, "input file")
	fs.StringVar(&cfg.Output, "out", cfg.Output, "output file")
	fs.IntVar(&cfg.Pacing.ChunkSize, "chunk", cfg.Pacing.ChunkSize, "max bytes per send")
	fs.DurationVar(&cfg.Pacing.Delay, "delay", cfg.Pacing.Delay, "pause between sends")
	fs.IntVar(&cfg.ReadChunk, "read-chunk", cfg.ReadChunk, "max bytes per receive")
	alphabet := fs.String("alphabet", transfer.DefaultAlphabet, "characters cycled by generate")
	logLevel := fs.String("log-level", "info", "minimum log level")
	verbose := fs.Bool("v", false, "debug logging")
	_ = fs.Parse(args[1:])
	tail := fs.Args()

	level := logger.ParseLevel(*logLevel)
	if *verbose {
		level = logger.LevelDebug
	}
	log := logger.New(os.Stdout, level).With(logger.F("role", strings.ToLower(args[0])))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch strings.ToLower(args[0]) {
	case "server":
		if len(tail) != 1 {
			return fmt.Errorf("server needs <port>")
		}
		port, err := parsePort(tail[0])
		if err != nil {
			return err
		}
		res, err := transfer.Receive(ctx, cfg, port, log)
		if err != nil {
			return err
		}
		log.Info("received", logger.F("file", cfg.Output), logger.F("bytes_per_sec", int64(res.Throughput())))

	case "client":
		if len(tail) != 2 {
			return fmt.Errorf("client needs <host> <port>")
		}
		port, err := parsePort(tail[1])
		if err != nil {
			return err
		}
		res, err := transfer.Send(ctx, cfg, tail[0], port, log)
		if err != nil {
			return err
		}
		log.Info("sent", logger.F("file", cfg.Input), logger.F("bytes_per_sec", int64(res.Throughput())))

	case "generate":
		if len(tail) != 1 {
			return fmt.Errorf("generate needs <size>")
		}
		size, err := strconv.ParseInt(tail[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad size %q: %w", tail[0], err)
		}
		f, err := os.Create(cfg.Input)
		if err != nil {
			return err
		}
		if err := transfer.GeneratePayload(f, size, *alphabet); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info("payload written", logger.F("file", cfg.Input), logger.F("bytes", size))

	default:
		fmt.Println(usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 0 || port > 65535 {
		return 0, fmt.Errorf("bad port %q", s)
	}
	return port, nil
}
