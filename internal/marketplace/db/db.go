// Package db implements the persistence layer of the application workflow
// on top of GORM. PostgreSQL is the production dialect; tests run the same
// repository against SQLite.
package db

import (
	"context"
	"fmt"

	dbmodels "github.com/sanayimarketi/marketplace/internal/marketplace/db/models"
	"github.com/sanayimarketi/marketplace/internal/marketplace/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store is the set of persistence operations the workflow runs against.
// Repository implements it; WithTransaction hands the callback a Store bound
// to a single database transaction.
type Store interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	GetCompany(ctx context.Context, id int64) (*models.Company, error)
	CreateCompany(ctx context.Context, company *models.Company) error

	GetCompanyUser(ctx context.Context, userID int64) (*models.CompanyUser, error)
	CreateCompanyUser(ctx context.Context, link *models.CompanyUser) (bool, error)

	CreateApplication(ctx context.Context, app *models.Application) error
	GetApplication(ctx context.Context, id int64) (*models.Application, error)
	LockApplication(ctx context.Context, id int64) (*models.Application, error)
	ResolveApplication(ctx context.Context, res *models.Resolution) error
	ListApplicationsByStatus(ctx context.Context, status models.ApplicationStatus) ([]*models.Application, error)
	ListApplicationsByUser(ctx context.Context, userID int64) ([]*models.Application, error)

	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}

// Repository is the GORM-backed Store.
type Repository struct {
	db *gorm.DB
}

// Config holds the PostgreSQL connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the connection string understood by the pgx driver.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// NewRepository connects to PostgreSQL and migrates the schema.
func NewRepository(cfg *Config) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewRepositoryFromDB(db)
}

// NewRepositoryFromDB wraps an already opened connection and migrates the schema.
func NewRepositoryFromDB(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(dbmodels.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Repository{db: db}, nil
}

// WithTransaction runs fn inside a database transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (r *Repository) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// Exec runs a raw statement outside the Store API, e.g. test cleanup.
func (r *Repository) Exec(ctx context.Context, sql string, values ...interface{}) error {
	return translateError(r.db.WithContext(ctx).Exec(sql, values...).Error)
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
