package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/tilescores/internal/loadtest"
	"github.com/okian/tilescores/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := loadtest.NewApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		logger.Get().Error(ctx, "load run failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}
