package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{"empty", "", "", "", ""},
		{"native dsn untouched", "u:p@tcp(db:3306)/app?parseTime=true", "x", "y", "u:p@tcp(db:3306)/app?parseTime=true"},
		{
			"jdbc url",
			"jdbc:mysql://db:3306/app?useSSL=false&serverTimezone=UTC&characterEncoding=utf8",
			"", "",
			"tcp(db:3306)/app?charset=utf8&loc=UTC&parseTime=true&tls=false",
		},
		{
			"override credentials",
			"mysql://root:old@db:3306/app",
			"svc", "new",
			"svc:new@tcp(db:3306)/app?charset=utf8mb4&parseTime=true",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}

func TestNewGorm_SQLite(t *testing.T) {
	db, err := NewGorm(Opts{
		Driver:       "sqlite",
		DSN:          "file:gorm_test?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestMaskDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://app:s3cret@db:5432/app?sslmode=disable": "postgres://app:****@db:5432/app?sslmode=disable",
		"host=db user=app password=s3cret dbname=app":       "host=db user=app password=**** dbname=app",
		"app:s3cret@tcp(db:3306)/app?parseTime=true":        "app:****@tcp(db:3306)/app?parseTime=true",
		"file:appointly.db?_foreign_keys=on":                "file:appointly.db?_foreign_keys=on",
	}
	for in, want := range cases {
		assert.Equal(t, want, maskDSN(in), in)
	}
}

func TestNewGorm_WithZapLogger(t *testing.T) {
	db, err := NewGorm(Opts{
		Driver:   "sqlite",
		DSN:      "file:gorm_zap_test?mode=memory&cache=shared",
		LogLevel: "info",
		Log:      zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, db.Exec("SELECT 1").Error)
}
