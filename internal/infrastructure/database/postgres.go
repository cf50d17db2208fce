package database

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tleroux/chiffrage-api/internal/config"
	"github.com/tleroux/chiffrage-api/internal/domain/entity"
)

// NewPostgresDB creates a new PostgreSQL database connection.
// TranslateError is enabled so unique violations surface as
// gorm.ErrDuplicatedKey, which the order reference retry loop relies on.
func NewPostgresDB(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to PostgreSQL database", zap.String("host", cfg.Host), zap.String("db", cfg.Name))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.User{},

		// Reference data
		&entity.Supplier{},
		&entity.Site{},
		&entity.Project{},
		&entity.Product{},
		&entity.LaborRole{},
		&entity.EstimateCategory{},

		// Orders
		&entity.PurchaseOrder{},
		&entity.OrderLine{},
		&entity.DevisFile{},

		// Estimates
		&entity.EstimateVersion{},
		&entity.EstimateItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedDefaultData seeds the labor roles a fresh install starts with and,
// when ADMIN_EMAIL/ADMIN_PASSWORD are configured, the first user.
func SeedDefaultData(db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	roles := []entity.LaborRole{
		{Name: "Ouvrier", HourlyRateCents: 3500, IsActive: true},
		{Name: "Chef d'équipe", HourlyRateCents: 4500, IsActive: true},
		{Name: "Conducteur de travaux", HourlyRateCents: 5500, IsActive: true},
	}

	for i := range roles {
		var existing entity.LaborRole
		if err := db.Where("name = ?", roles[i].Name).First(&existing).Error; err != nil {
			if err := db.Create(&roles[i]).Error; err != nil {
				log.Warn("failed to seed labor role", zap.String("name", roles[i].Name), zap.Error(err))
			}
		}
	}

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		var existing entity.User
		err := db.Where("email = ?", cfg.Admin.Email).First(&existing).Error
		if err != nil {
			hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash admin password: %w", err)
			}
			admin := entity.User{
				FirstName: "Admin",
				LastName:  "Admin",
				Email:     cfg.Admin.Email,
				Password:  string(hashed),
				IsActive:  true,
			}
			if err := db.Create(&admin).Error; err != nil {
				return fmt.Errorf("failed to seed admin user: %w", err)
			}
			log.Info("seeded admin user", zap.String("email", cfg.Admin.Email))
		}
	}
	return nil
}
