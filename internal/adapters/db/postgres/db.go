package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to PostgreSQL through the pgx driver and tunes the pool.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// AutoMigrate creates the schema from the entities. Tests use it on sqlite;
// production runs the SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&PermissionEntity{}, &RoleEntity{}, &UserEntity{})
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// translate maps gorm/driver errors onto domain sentinels.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case customErrors.IsNotFound(err), customErrors.IsAlreadyExists(err):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return customErrors.ErrNotFound
	case isDuplicate(err):
		return customErrors.ErrAlreadyExists
	default:
		return customErrors.WrapInternal(err, op)
	}
}
