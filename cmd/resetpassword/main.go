// cmd/resetpassword/main.go: sets a user's password from the command line.
// Usage: go run ./cmd/resetpassword -username admin -password s3cret
package main

import (
	"context"
	"flag"
	"os"

	"github.com/raw-dani/pos-only/internal/config"
	"github.com/raw-dani/pos-only/internal/infra"
	"github.com/raw-dani/pos-only/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	username := flag.String("username", "admin", "user to update")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	if len(*password) < 6 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	u, err := users.FindByUsername(ctx, *username)
	if repository.IsNotFound(err) {
		log.Fatal().Str("username", *username).Msg("user not found")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("look up user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}
	if err := users.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		log.Fatal().Err(err).Msg("update password")
	}
	log.Info().Str("username", u.Username).Msg("password updated")
}
