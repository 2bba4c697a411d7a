package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/cli"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

func main() {
	// SIGINT/SIGTERM cancel the running command for a graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := cli.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
