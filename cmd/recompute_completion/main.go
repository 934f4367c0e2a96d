package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/MAximeXX/AIEval/internal/app"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("load .env: %v\n", err)
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	n, err := application.Services.Completion.Recompute(dbctx.Context{Ctx: context.Background()})
	if err != nil {
		fmt.Printf("recompute completion: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("completion rows refreshed: %d\n", n)
}
