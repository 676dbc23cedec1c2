package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/fashionai/stylist-service/internal/app"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	application, err := app.New()

	if err != nil {
		panic(fmt.Sprintf("failed to initialize application: %v", err))
	}

	ctx := context.Background()

	if err := application.Start(ctx); err != nil {
		panic(fmt.Sprintf("failed to start application: %v", err))
	}

	application.WaitForShutdown()
	application.Stop()
}
