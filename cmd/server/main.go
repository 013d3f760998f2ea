package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/tradeforge/tradeai-gateway/internal/app"
)

func main() {
	// Local runs keep their config in .env; containers set real env vars.
	_ = godotenv.Load()

	a, err := app.New()
	if err != nil {
		fmt.Printf("startup failed: %v\n", err)
		os.Exit(1)
	}
	if err := a.Run(); err != nil {
		a.Log.Fatal("server failed", "error", err)
	}
}
