// Package testutil wires in-memory backends for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/Miraines/rbac-auth-service/internal/adapters/db/postgres"
	redisCache "github.com/Miraines/rbac-auth-service/internal/adapters/db/redis"
	"github.com/Miraines/rbac-auth-service/internal/app/auth/jwt"
	"github.com/Miraines/rbac-auth-service/internal/app/auth/password"
	"github.com/Miraines/rbac-auth-service/internal/infra/config"
	"github.com/alexedwards/argon2id"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB returns a fresh migrated sqlite database private to the test.
func DB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, postgres.AutoMigrate(db))
	return db
}

// Redis starts a miniredis server and returns a client bound to it.
func Redis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func Cache(t testing.TB) (*redisCache.Cache, *miniredis.Miniredis) {
	client, mr := Redis(t)
	return redisCache.NewCache(client, zap.NewNop(), 5*time.Minute), mr
}

func Config() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		Issuer:           "auth-test",
		Audience:         "api-test",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		UserCacheTTL:     5 * time.Minute,
		CacheDefaultTTL:  5 * time.Minute,
		PasswordPepper:   "pepper",
		EmailMaxAttempts: 3,
		EmailBackoff:     10 * time.Millisecond,
	}
}

// Hasher uses cheap argon2id parameters.
func Hasher(pepper string) *password.Hasher {
	return password.NewHasherWithParams(pepper, &argon2id.Params{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
}

func JWT(t testing.TB, cfg *config.Config) *jwt.JwtUtilImpl {
	t.Helper()
	j, err := jwt.NewJWTUtil(cfg)
	require.NoError(t, err)
	return j
}
