// cmd/seed/main.go: creates roles, the default admin, payment methods and
// store settings. Existing rows are left untouched, so it is safe to rerun.
// Usage: go run ./cmd/seed
package main

import (
	"context"

	"github.com/raw-dani/pos-only/internal/config"
	"github.com/raw-dani/pos-only/internal/infra"
	"github.com/raw-dani/pos-only/internal/model"
	"github.com/raw-dani/pos-only/internal/rbac"
	"github.com/raw-dani/pos-only/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminUsername = "admin"
	adminPassword = "admin123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	ctx := context.Background()

	roles := repository.NewRoleRepository(db)
	var adminRole *model.Role
	for _, name := range rbac.AssignableRoles() {
		role, err := roles.Ensure(ctx, string(name))
		if err != nil {
			log.Fatal().Err(err).Str("role", string(name)).Msg("ensure role")
		}
		if name == rbac.RoleAdmin {
			adminRole = role
		}
	}

	users := repository.NewUserRepository(db)
	if _, err := users.FindByUsername(ctx, adminUsername); repository.IsNotFound(err) {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 12)
		if err != nil {
			log.Fatal().Err(err).Msg("bcrypt")
		}
		admin := &model.User{
			ID:           uuid.New(),
			Username:     adminUsername,
			Name:         "Administrator",
			PasswordHash: string(hash),
			RoleID:       adminRole.ID,
			Active:       true,
		}
		if err := users.Create(ctx, admin); err != nil {
			log.Fatal().Err(err).Msg("create admin")
		}
		log.Info().Str("username", adminUsername).Str("password", adminPassword).Msg("admin user created, change the password")
	} else if err != nil {
		log.Fatal().Err(err).Msg("look up admin")
	}

	methods := repository.NewPaymentMethodRepository(db)
	for _, m := range []model.PaymentMethod{
		{Name: "Cash", Type: model.PaymentCash},
		{Name: "Transfer Bank", Type: model.PaymentTransfer},
		{Name: "QRIS", Type: model.PaymentQRIS},
	} {
		m.ID = uuid.New()
		m.Active = true
		err := methods.Create(ctx, &m)
		switch {
		case repository.IsDuplicateKey(err):
		case err != nil:
			log.Fatal().Err(err).Str("method", m.Name).Msg("create payment method")
		default:
			log.Info().Str("method", m.Name).Msg("payment method created")
		}
	}

	settings := repository.NewSettingRepository(db)
	if _, err := settings.Get(ctx); repository.IsNotFound(err) {
		s := model.DefaultSetting()
		s.ID = uuid.New()
		s.TaxEnabled = true
		s.TaxRate = decimal.NewFromInt(10)
		if err := settings.Create(ctx, &s); err != nil {
			log.Fatal().Err(err).Msg("create settings")
		}
		log.Info().Msg("default settings created")
	} else if err != nil {
		log.Fatal().Err(err).Msg("read settings")
	}

	log.Info().Msg("seed complete")
}
