package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"class-access/internal/config"
	"class-access/internal/domain/model"
	"class-access/internal/infra/api"
	pg "class-access/internal/infra/db/postgres"
	"class-access/internal/infra/logging"
	"class-access/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	codesPerClass := flag.Int("codes", 5, "unused codes to keep available per paid class")
	printTokens := flag.Bool("tokens", false, "print short-lived demo bearer tokens")
	flag.Parse()

	// ---- Config ----
	_ = godotenv.Load()
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	classRepo := pg.NewClassRepo(pool)
	codeRepo := pg.NewAccessCodeRepo(pool)
	codeUC := usecase.NewCodeUseCase(codeRepo, classRepo, pg.NewTxManager(pool), 0, logger)
	statsUC := usecase.NewStatsUseCase(classRepo, codeRepo, pg.NewEnrollmentRepo(pool), logger)

	seed := []model.Class{
		{ID: "intro-go", Title: "Introduction to Go", IsFree: true},
		{ID: "concurrency", Title: "Concurrency Patterns", Price: 150_000},
		{ID: "postgres-internals", Title: "Postgres Internals", Price: 690_000},
	}

	for i := range seed {
		c := seed[i]
		// Upsert keeps reruns idempotent.
		if err := classRepo.Save(ctx, nil, &c); err != nil {
			log.Fatalf("save class %q: %v", c.ID, err)
		}
		if c.IsFree {
			fmt.Printf("class: %s (free)\n", c.ID)
			continue
		}

		st, err := statsUC.ClassStats(ctx, c.ID)
		if err != nil {
			log.Fatalf("stats %q: %v", c.ID, err)
		}
		missing := *codesPerClass - st.CodesUnused
		if missing <= 0 {
			fmt.Printf("class: %s (price=%d, %d unused codes already present)\n", c.ID, c.Price, st.CodesUnused)
			continue
		}
		batchID, codes, err := codeUC.Issue(ctx, c.ID, missing, c.Price)
		if err != nil {
			log.Fatalf("issue codes for %q: %v", c.ID, err)
		}
		fmt.Printf("class: %s (price=%d) batch=%s\n", c.ID, c.Price, batchID)
		for _, ac := range codes {
			fmt.Printf("  - %s\n", ac.Code)
		}
	}

	if *printTokens {
		auth := api.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		for _, u := range []struct{ id, role string }{{"demo-admin", api.RoleAdmin}, {"demo-user", ""}} {
			tok, err := auth.Mint(u.id, u.role, 24*time.Hour)
			if err != nil {
				log.Fatalf("mint token: %v", err)
			}
			fmt.Printf("token %s: %s\n", u.id, tok)
		}
	}

	fmt.Println("Seeding complete.")
}
