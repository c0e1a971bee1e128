package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"library-catalog/internal/core/auth"
	"library-catalog/internal/core/config"
	"library-catalog/internal/core/database"
	"library-catalog/internal/core/logger"
	"library-catalog/internal/core/server"
	"library-catalog/internal/core/session"
	"library-catalog/internal/repo"
	"library-catalog/internal/service"
	"library-catalog/internal/transport/http/handler"
	"library-catalog/internal/transport/http/router"
	"library-catalog/internal/transport/http/web"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	zap.ReplaceGlobals(log)

	if cfg.Session.Secret == "" {
		log.Fatal("session.secret is required (APP_SESSION_SECRET)")
	}

	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected",
		zap.String("driver", cfg.DB.Driver),
		zap.String("dsn", database.MaskDSN(cfg.DB.DSN)),
	)
	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}
	store := repo.NewStore(db)

	// 会话存储
	sessions, closeSessions := mustOpenSessions(ctx, cfg, log)
	defer closeSessions()

	// 服务与处理器
	books := service.NewBookService(store, log.Named("books"))
	loans := service.NewLoanService(store, cfg.Loan.Days, log.Named("loans"))
	users := service.NewUserService(store, log.Named("users"))
	authSvc := service.NewAuthService(store, log.Named("auth"))

	checks := map[string]handler.Pinger{"db": store}
	if p, ok := sessions.(handler.Pinger); ok {
		checks["session"] = p
	}

	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour
	r, err := router.NewWebEngine(router.Deps{
		Log:  log,
		HTTP: cfg.App.HTTP,
		Sessions: &web.Manager{
			Store:  sessions,
			Tokens: &auth.JWTer{Secret: []byte(cfg.Session.Secret), Issuer: cfg.Session.Issuer, TTL: ttl},
			Cookie: cfg.Session.CookieName,
			TTL:    ttl,
			Secure: cfg.Session.Secure,
		},
		Pages: handler.NewPageHandler(books, checks),
		Auth:  handler.NewAuthHandler(authSvc),
		Books: handler.NewBookHandler(books, loans),
		Users: handler.NewUserHandler(users),
	})
	if err != nil {
		log.Fatal("build router", zap.Error(err))
	}

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	srv.ErrorLog = logger.ToStdLogger(log.Named("http"), zapcore.ErrorLevel)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("library catalog starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("session_store", cfg.Session.Store),
		zap.Int("loan_days", cfg.Loan.Days),
	)

	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Fatal("library catalog FAILED", zap.Error(err))
	}
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

// mustOpenSessions session.store: redis（默认）或 mongo
func mustOpenSessions(ctx context.Context, cfg *config.Config, l *zap.Logger) (session.Store, func()) {
	switch cfg.Session.Store {
	case "mongo":
		client, err := session.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			l.Fatal("session store", zap.Error(err))
		}
		st, err := session.NewMongo(ctx, client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
		if err != nil {
			l.Fatal("session store", zap.Error(err))
		}
		return st, func() { _ = client.Disconnect(context.Background()) }
	case "redis", "":
		st := session.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := st.Ping(pingCtx); err != nil {
			l.Fatal("session store", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		return st, func() { _ = st.Close() }
	default:
		l.Fatal("unknown session store", zap.String("store", cfg.Session.Store))
		return nil, nil
	}
}
