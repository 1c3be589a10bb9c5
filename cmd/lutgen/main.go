package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

var _ = fmt.Print

func main() {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}()
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/lutgen job-file.toml|job-file.yaml ...")
		os.Exit(1)
	}
	level := slog.LevelInfo
	if os.Getenv("LUTGEN_DEBUG") != "" {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	for _, path := range os.Args[1:] {
		var job *Job
		if job, err = LoadJob(path); err != nil {
			return
		}
		if err = job.Run(ctx, log.With("job", path)); err != nil {
			err = fmt.Errorf("%s: %w", path, err)
			return
		}
	}
}
