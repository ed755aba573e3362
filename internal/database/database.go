package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storeapp/internal/models"
)

// Config holds the connection details for the persistence gateway.
type Config struct {
	Driver string // "mysql" or "sqlite"
	DSN    string
}

// Gateway wraps the database handle with an explicit open/close
// lifecycle. It is injected into the repositories; there is no
// package-level connection state.
type Gateway struct {
	db *gorm.DB
}

// Open connects to the database and returns a Gateway. TranslateError
// is enabled so duplicate-key violations surface as
// gorm.ErrDuplicatedKey regardless of driver; the rating upsert depends
// on that.
func Open(cfg Config) (*Gateway, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql", "":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Gateway{db: db}, nil
}

// DB exposes the underlying handle for the repositories.
func (g *Gateway) DB() *gorm.DB { return g.db }

// Close releases the connection pool.
func (g *Gateway) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying connection: %w", err)
	}
	return sqlDB.Close()
}

// Migrate creates or updates the schema for all entities.
func (g *Gateway) Migrate() error {
	if err := g.db.AutoMigrate(&models.User{}, &models.Store{}, &models.Rating{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedAdmin creates the default administrator account if no user with
// the given email exists. The password arrives already hashed; this
// package never sees plaintext credentials.
func (g *Gateway) SeedAdmin(name, email, passwordHash string) error {
	var count int64
	if err := g.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if count > 0 {
		return nil
	}
	admin := models.User{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    email,
		Password: passwordHash,
		Role:     models.RoleAdmin,
	}
	if err := g.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	logrus.Infof("Default admin created: %s", email)
	return nil
}
