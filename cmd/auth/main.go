package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	myPostgresRepo "github.com/Miraines/rbac-auth-service/internal/adapters/db/postgres"
	myRedisRepo "github.com/Miraines/rbac-auth-service/internal/adapters/db/redis"
	myRedisQueue "github.com/Miraines/rbac-auth-service/internal/adapters/queue/redis"
	myGrpc "github.com/Miraines/rbac-auth-service/internal/adapters/transport/grpc"
	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/handler"
	httpmw "github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/rbac-auth-service/internal/app/auth/identity"
	"github.com/Miraines/rbac-auth-service/internal/app/auth/jwt"
	"github.com/Miraines/rbac-auth-service/internal/app/auth/password"
	appsvc "github.com/Miraines/rbac-auth-service/internal/app/auth/service"
	"github.com/Miraines/rbac-auth-service/internal/app/auth/token"
	emailsvc "github.com/Miraines/rbac-auth-service/internal/app/email"
	"github.com/Miraines/rbac-auth-service/internal/app/iam"
	"github.com/Miraines/rbac-auth-service/internal/app/user"
	"github.com/Miraines/rbac-auth-service/internal/infra/config"
	"github.com/Miraines/rbac-auth-service/internal/infra/health"
	lg "github.com/Miraines/rbac-auth-service/internal/infra/log"
	"github.com/Miraines/rbac-auth-service/internal/infra/metrics"
	"github.com/Miraines/rbac-auth-service/internal/infra/migrate"
	"github.com/Miraines/rbac-auth-service/internal/infra/ratelimit"
	"github.com/Miraines/rbac-auth-service/internal/infra/server"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		lg.Must("info").Fatal("failed to load config", zap.Error(err))
	}

	zapLog := lg.Must(cfg.LogLevel)
	defer zapLog.Sync()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Init()

	db, err := myPostgresRepo.Open(cfg.DatabaseURL)
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	validate := dto.NewValidator()

	userRepo := myPostgresRepo.NewPostgresUserRepo(db)
	roleRepo := myPostgresRepo.NewPostgresRoleRepo(db)
	permRepo := myPostgresRepo.NewPostgresPermissionRepo(db)
	cache := myRedisRepo.NewCache(redisCli, zapLog, cfg.CacheDefaultTTL)

	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}
	hasher := password.NewHasher(cfg.PasswordPepper)
	tokens := token.NewService(jwtUtil, cache, userRepo, zapLog)
	resolver := identity.NewResolver(userRepo, cache, cfg.UserCacheTTL, zapLog)

	emailQueue := myRedisQueue.NewEmailQueue(redisCli, "email")
	mail := emailsvc.NewService(emailQueue)
	worker := emailsvc.NewWorker(emailQueue, emailsvc.NewLogSender(zapLog), cfg.EmailMaxAttempts, cfg.EmailBackoff, zapLog)

	iamSvc := iam.NewService(userRepo, roleRepo, permRepo, resolver, validate, zapLog)
	if cfg.SeedOnStart {
		seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := iamSvc.SeedPermissions(seedCtx); err != nil {
			zapLog.Fatal("seed permissions", zap.Error(err))
		}
		if _, err := iamSvc.SeedRoles(seedCtx); err != nil {
			zapLog.Fatal("seed roles", zap.Error(err))
		}
		cancel()
	}

	checker := health.NewChecker(2*time.Second).
		Add("postgres", func(ctx context.Context) error { return myPostgresRepo.Ping(ctx, db) }).
		Add("redis", cache.Ping)
	reporter := myGrpc.NewHealthReporter(checker, 10*time.Second, zapLog)

	h := handler.New(handler.Deps{
		Auth:         appsvc.New(userRepo, roleRepo, tokens, hasher, mail, validate, zapLog),
		Users:        user.NewService(userRepo, hasher, resolver, validate, zapLog),
		IAM:          iamSvc,
		Queue:        mail,
		Health:       checker,
		Log:          zapLog,
		CookieDomain: cfg.CookieDomain,
		CookieSecure: cfg.CookieSecure,
	})
	authn := httpmw.Authenticate(identity.NewAuthenticator(jwtUtil, resolver), zapLog)
	router := handler.NewRouter(h.Routes(), authn, handler.RouterOptions{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: cfg.AllowCredentials,
		Limiter:          ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst, 10_000, time.Hour),
		TrustedProxies:   cfg.TrustedProxies,
	}, zapLog)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return server.StartGRPCServer(ctx, cfg, reporter.Server(), zapLog)
	})
	g.Go(func() error {
		return reporter.Run(ctx)
	})
	g.Go(func() error {
		return worker.Run(ctx)
	})
	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddress))
		var err error
		if cfg.HTTPSCertFile != "" {
			err = srv.ListenAndServeTLS(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		zapLog.Info("shutdown signal received")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
