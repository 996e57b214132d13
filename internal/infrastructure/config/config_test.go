package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	// 空目录：没有配置文件时使用默认值
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenExpire)
	assert.Equal(t, 10*time.Minute, cfg.Cache.RatingTTL)
	assert.Equal(t, "localhost:4317", cfg.Tracing.CollectorURL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoadFrom_File(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  port: 9090
database:
  driver: memory
rate_limit:
  requests_per_second: 5
  burst: 7
bootstrap:
  admin_email: admin@demo.com
  admin_wallet: 250.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
	assert.Equal(t, "admin@demo.com", cfg.Bootstrap.AdminEmail)
	assert.Equal(t, 250.5, cfg.Bootstrap.AdminWallet)
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	t.Setenv("BIGBOOKS_DATABASE_PASSWORD", "s3cret")
	t.Setenv("BIGBOOKS_SERVER_PORT", "7070")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	t.Run("未知驱动", func(t *testing.T) {
		t.Setenv("BIGBOOKS_DATABASE_DRIVER", "sqlite")
		_, err := LoadFrom(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("生产环境使用默认密钥", func(t *testing.T) {
		t.Setenv("BIGBOOKS_SERVER_MODE", "release")
		_, err := LoadFrom(t.TempDir())
		assert.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		User: "root", Password: "pw", Host: "db", Port: 3306, DBName: "bigbooks",
		Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai",
	}
	assert.Equal(t, "root:pw@tcp(db:3306)/bigbooks?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai", d.DSN())
}
