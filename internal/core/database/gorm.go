package database

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "appointly/internal/core/logger"
)

var ErrUnsupportedDriver = errors.New("unsupported db driver")

type Opts struct {
	Driver             string // postgres | mysql | sqlite
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string      // silent | error | warn | info
	Log                *zap.Logger // 为空则用 gorm 默认 logger
}

func dialector(o Opts) (gorm.Dialector, string, error) {
	switch o.Driver {
	case "postgres":
		return postgres.Open(o.DSN), o.DSN, nil
	case "mysql":
		dsn := normalizeMySQLDSN(o.DSN, o.Username, o.Password)
		return mysql.Open(dsn), dsn, nil
	case "sqlite":
		// 内存库需 MaxOpenConns=1 且 cache=shared
		return sqlite.Open(o.DSN), o.DSN, nil
	default:
		return nil, "", ErrUnsupportedDriver
	}
}

func gormLogger(o Opts) logger.Interface {
	lvl := logger.Warn
	switch o.LogLevel {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	if o.Log == nil {
		return logger.Default.LogMode(lvl)
	}
	std, err := applog.ToStdLogger(o.Log.Named("gorm"), zapcore.InfoLevel)
	if err != nil {
		return logger.Default.LogMode(lvl)
	}
	return logger.New(std, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
	})
}

func NewGorm(o Opts) (*gorm.DB, error) {
	dial, dsn, err := dialector(o)
	if err != nil {
		return nil, err
	}
	if o.Log != nil && o.Log.Core().Enabled(zapcore.DebugLevel) {
		o.Log.Debug("db dsn", zap.String("driver", o.Driver), zap.String("dsn", maskDSN(dsn)))
	}

	db, err := gorm.Open(dial, &gorm.Config{Logger: gormLogger(o)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if o.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetimeMin > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	}
	// 写操作自己开事务（repo.Transactor），省掉 gorm 的默认事务
	return db.Session(&gorm.Session{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	}), nil
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
