// Package app 组装 cmd/api 与 cmd/admin 共用的依赖。
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"appointly/internal/core/auth"
	"appointly/internal/core/cache"
	"appointly/internal/core/config"
	"appointly/internal/core/database"
	"appointly/internal/mq"
	"appointly/internal/notify"
	"appointly/internal/repo"
	"appointly/internal/service"
	"appointly/internal/service/ports"
	"appointly/internal/storage"
	"appointly/internal/transport/http/handler"
	"appointly/internal/transport/http/router"
)

const blockedDatesTTL = 5 * time.Minute

type App struct {
	Cfg      *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	JWT      *auth.JWTer
	Registry *router.Registry
	Seeder   *service.Seeder

	dispatcher *notify.Dispatcher
	closers    []func() error
}

func OpenDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	return database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                log,
	})
}

// New 打开数据库、可选 Redis/RabbitMQ，并装配服务与 handler
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Cfg: cfg, Log: log}

	db, err := OpenDB(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, func() error { return database.Close(db) })
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			a.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}

	a.JWT = &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL()}

	users := repo.NewUserRepo(db)
	slotRepo := repo.NewSlotRepo(db)
	var blockedRepo ports.BlockedDateRepo = repo.NewBlockedDateRepo(db)
	var otps ports.OTPStore = repo.NewOTPRepo(db)

	if cfg.Redis.Enabled() {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			a.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		a.closers = append(a.closers, c.Close)
		blockedRepo = repo.NewCachedBlockedDateRepo(blockedRepo, c, blockedDatesTTL, log)
		otps = repo.NewRedisOTPStore(c.RDB)
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	sinks, err := a.notifySinks(log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.dispatcher = notify.NewDispatcher(log, notify.Options{
		QueueSize: cfg.Notify.QueueSize,
		Workers:   cfg.Notify.Workers,
		Timeout:   time.Duration(cfg.Notify.TimeoutSec) * time.Second,
	}, sinks...)
	a.dispatcher.Start(ctx)

	files, err := storage.NewLocal(cfg.Upload.Dir, "/uploads")
	if err != nil {
		a.Close()
		return nil, err
	}

	slots := service.NewSlotService(slotRepo, blockedRepo, log)
	bookings := service.NewBookingService(repo.NewTransactor(db), repo.NewBookingRepo(db), slots, a.dispatcher, log)
	blocked := service.NewBlockedDateService(blockedRepo, log)
	accounts := service.NewAccountService(service.AccountDeps{
		Users:    users,
		OTPs:     otps,
		Mailer:   notify.OTPMailer(cfg, log),
		Tokens:   a.JWT,
		Files:    files,
		Notifier: a.dispatcher,
		Log:      log,
		OTPTTL:   time.Duration(cfg.OTP.TTLMin) * time.Minute,
	})
	a.Seeder = service.NewSeeder(users, slotRepo, log)

	cookie := handler.Cookie{Name: cfg.JWT.CookieName, Secure: cfg.JWT.CookieSecure, TTL: cfg.JWT.TTL()}
	a.Registry = (&router.Registry{}).Register(
		handler.NewAccountHandler(accounts, log, cookie, int64(cfg.Upload.MaxSizeMB)<<20),
		handler.NewSlotHandler(slots, log),
		handler.NewBookingHandler(bookings, log),
		handler.NewBlockedDateHandler(blocked, log),
	)
	return a, nil
}

// notifySinks 启用 RabbitMQ 时只投到 MQ，由 cmd/notifier 真正发送
func (a *App) notifySinks(log *zap.Logger) ([]notify.Sink, error) {
	if a.Cfg.Rabbit.Enabled() {
		pub, err := mq.NewPublisher(a.Cfg.Rabbit.URL, a.Cfg.Rabbit.Exchange)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pub.Close)
		log.Info("notifications via rabbitmq", zap.String("exchange", a.Cfg.Rabbit.Exchange))
		return []notify.Sink{notify.NewMQSink(pub)}, nil
	}
	return notify.DeliverySinks(a.Cfg, log)
}

// Seed 仅在配置开启时写入演示数据
func (a *App) Seed(ctx context.Context) error {
	if !a.Cfg.Seed.Enable {
		return nil
	}
	return a.Seeder.Seed(ctx)
}

func (a *App) RouterOptions() router.Options {
	return router.Options{
		CookieName: a.Cfg.JWT.CookieName,
		UploadDir:  a.Cfg.Upload.Dir,
	}
}

// Close 先排空通知队列，再逆序关闭连接
func (a *App) Close() {
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("close resource", zap.Error(err))
		}
	}
	a.closers = nil
}
