package main

import (
	"context"
	"os/signal"
	"syscall"

	"commute-route-service/internal/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	container := app.MustBuildSchedulerContainer(ctx)
	app.NewSchedulerRunner().MustRun(container)
}
