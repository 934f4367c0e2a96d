package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/MAximeXX/AIEval/internal/app"
	types "github.com/MAximeXX/AIEval/internal/domain"
	"github.com/MAximeXX/AIEval/internal/pkg/dbctx"
	"github.com/MAximeXX/AIEval/internal/platform/envutil"
)

func main() {
	var demo bool
	var demoPassword string
	flag.BoolVar(&demo, "demo", false, "also create a demo class (one teacher, two students)")
	flag.StringVar(&demoPassword, "demo-password", "demo123", "password for the demo accounts")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("load .env: %v\n", err)
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	dbc := dbctx.Context{Ctx: context.Background()}

	n, err := application.SeedSurveyItems(dbc)
	if err != nil {
		fmt.Printf("seed survey items: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("survey items inserted: %d\n", n)

	if username := envutil.String("SEED_ADMIN_USERNAME", ""); username != "" {
		created, err := application.EnsureUser(dbc, &types.User{
			Username:    username,
			Role:        types.RoleAdmin,
			SchoolName:  envutil.String("SEED_ADMIN_SCHOOL", ""),
			ClassNo:     "管理员",
			TeacherName: "管理员",
		}, envutil.String("SEED_ADMIN_PASSWORD", ""))
		if err != nil {
			fmt.Printf("seed admin: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("admin %s created: %v\n", username, created)
	}

	if demo {
		n, err := application.SeedDemoClass(dbc, demoPassword)
		if err != nil {
			fmt.Printf("seed demo class: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("demo accounts created: %d\n", n)
	}
}
