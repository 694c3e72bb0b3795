// Command seed populates the database with a demo user and a small ledger.
package main

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/config"
	"fintrack/internal/db"
	"fintrack/internal/logger"
	"fintrack/internal/model"
	"fintrack/internal/repository"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.IsProduction())
	defer func() { _ = log.Sync() }()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal("database init", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(&model.User{}, &model.Profile{}, &model.Transaction{}); err != nil {
		log.Fatal("auto-migrate", zap.Error(err))
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	profileRepo := repository.NewProfileRepository(gormDB)
	transactionRepo := repository.NewTransactionRepository(gormDB)

	if _, err := userRepo.FindByUsername(ctx, "demo"); err == nil {
		log.Info("demo user already exists, nothing to do")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("hash password", zap.Error(err))
	}

	user := &model.User{
		Username:     "demo",
		Email:        "demo@example.com",
		PasswordHash: string(hash),
		Name:         "Demo User",
		Role:         model.RoleUser,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatal("create demo user", zap.Error(err))
	}
	if err := profileRepo.Create(ctx, &model.Profile{
		UserID: user.ID,
		Avatar: model.DefaultAvatar,
	}); err != nil {
		log.Fatal("create demo profile", zap.Error(err))
	}

	entries := []struct {
		name        string
		value       string
		description string
	}{
		{"Salary", "3200.00", "Monthly salary"},
		{"Rent", "-850.00", "Apartment rent"},
		{"Groceries", "-126.45", ""},
		{"Freelance gig", "400.00", "Logo design"},
		{"Electricity", "-58.30", ""},
	}
	for _, entry := range entries {
		txn := &model.Transaction{
			UserID:      user.ID,
			Name:        entry.name,
			Description: entry.description,
			Value:       decimal.RequireFromString(entry.value),
		}
		if err := transactionRepo.Create(ctx, txn); err != nil {
			log.Fatal("create demo transaction", zap.Error(err), zap.String("name", entry.name))
		}
	}

	log.Info("seeded demo user", zap.Uint("user_id", user.ID), zap.Int("transactions", len(entries)))
}
