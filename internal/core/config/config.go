package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type LogRotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate LogRotate
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
	CookieName        string
	CookieSecure      bool
}

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r Redis) Enabled() bool { return r.Addr != "" }

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Mail SMTP 发信；Host 为空则不发邮件
type Mail struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Telegram struct {
	Token  string
	ChatID int64
}

type Rabbit struct {
	URL      string
	Exchange string
	Queue    string
	Prefetch int
}

func (r Rabbit) Enabled() bool { return r.URL != "" }

type Notify struct {
	QueueSize  int
	Workers    int
	TimeoutSec int
	AdminEmail string
}

type OTP struct {
	TTLMin int
}

type Upload struct {
	Dir       string
	MaxSizeMB int
}

type Seed struct {
	Enable bool
}

type Config struct {
	App      App
	Log      Log
	JWT      JWT
	DB       DB
	Redis    Redis `mapstructure:"redis"`
	Mail     Mail
	Telegram Telegram
	Rabbit   Rabbit
	Notify   Notify
	OTP      OTP `mapstructure:"otp"`
	Upload   Upload
	Seed     Seed
}

func Load(path string) *Config {
	c, err := LoadE(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}

func LoadE(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, &loadErr{op: "read config", err: err}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, &loadErr{op: "unmarshal config", err: err}
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "appointly")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "appointly")
	v.SetDefault("jwt.accessTokenTTLMin", 60*24)
	v.SetDefault("jwt.cookieName", "token")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:appointly.db?_foreign_keys=on")
	v.SetDefault("db.maxOpenConns", 10)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("mail.port", 587)
	v.SetDefault("rabbit.exchange", "appointly.events")
	v.SetDefault("rabbit.queue", "appointly.notifications")
	v.SetDefault("rabbit.prefetch", 8)
	v.SetDefault("notify.queueSize", 256)
	v.SetDefault("notify.workers", 2)
	v.SetDefault("notify.timeoutSec", 15)
	v.SetDefault("otp.ttlMin", 15)
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.maxSizeMB", 5)
}

type loadErr struct {
	op  string
	err error
}

func (e *loadErr) Error() string { return e.op + ": " + e.err.Error() }
func (e *loadErr) Unwrap() error { return e.err }
