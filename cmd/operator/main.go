// Command operator creates a login for the quotation API.
//
//	operator -email ana@example.com -password secret -name "Ana"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/balloon_quote/internal/config"
	"github.com/GTDGit/balloon_quote/internal/database"
	"github.com/GTDGit/balloon_quote/internal/repository"
	"github.com/GTDGit/balloon_quote/internal/service"
)

func main() {
	email := flag.String("email", "", "operator email (required)")
	password := flag.String("password", "", "operator password (required)")
	name := flag.String("name", "", "display name")
	migrations := flag.String("migrations", "migrations", "migrations directory")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := database.Migrate(db.DB, *migrations); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	auth := service.NewAuthService(repository.NewOperatorRepository(db))
	op, err := auth.CreateOperator(ctx, *email, *password, *name)
	if err != nil {
		log.Fatal().Err(err).Str("email", *email).Msg("failed to create operator")
	}
	fmt.Printf("operator %d created: %s\n", op.ID, op.Email)
}
