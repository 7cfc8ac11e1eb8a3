package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"subsidy-wallet-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)

	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "subsidy-wallet-service", cfg.JWT.Issuer)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)

	assert.Equal(t, 2*time.Second, cfg.Simulator.EligibilityCheckDelay)
	assert.Equal(t, 2*time.Second, cfg.Simulator.SettlementDelay)
	assert.Equal(t, 2*time.Second, cfg.Simulator.SpendDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.Simulator.ScanDelay)
	assert.Equal(t, []string{"mykasih"}, cfg.Simulator.DeniedPrograms)
}

func TestLoad_DefaultCatalog(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	subsidies := cfg.CatalogSubsidies()
	require.Len(t, subsidies, 3)

	assert.Equal(t, "bkk", subsidies[0].ID)
	assert.Equal(t, int64(600), subsidies[0].Amount)
	assert.Equal(t, domain.SubsidyStatusAvailable, subsidies[0].Status)

	assert.Equal(t, "mykasih", subsidies[1].ID)
	assert.Equal(t, int64(50), subsidies[1].Amount)

	assert.Equal(t, "student", subsidies[2].ID)
	assert.Equal(t, int64(100), subsidies[2].Amount)
	assert.Equal(t, domain.SubsidyStatusClaimed, subsidies[2].Status)
}

func TestLoad_DefaultMerchants(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	merchants := cfg.DirectoryMerchants()
	require.Len(t, merchants, 1)

	assert.Equal(t, "nsk-kl", merchants[0].Code)
	assert.Equal(t, "NSK Trade City", merchants[0].Name)
	assert.Equal(t, "Kuala Lumpur", merchants[0].Location)
	assert.True(t, merchants[0].Accepts("bkk"))
	assert.False(t, merchants[0].Accepts("student"))
}

func TestLoad_FromYAMLFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090
  mode: "release"
redis:
  host: "redis.example.com"
  port: 6380
  password: "redispwd"
  db: 2
jwt:
  secret: "my-jwt-secret"
  expiry: "12h"
  issuer: "test-wallet"
log:
  level: "debug"
  pretty: true
simulator:
  eligibility_check_delay: "10ms"
  settlement_delay: "5ms"
  denied_programs: ["bkk", "student"]
catalog:
  - id: "petrol"
    name: "Petrol Subsidy"
    amount: 200
    claimed: false
`)
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)

	assert.Equal(t, "redis.example.com:6380", cfg.Redis.Addr())
	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiry)

	assert.Equal(t, 10*time.Millisecond, cfg.Simulator.EligibilityCheckDelay)
	assert.Equal(t, 5*time.Millisecond, cfg.Simulator.SettlementDelay)
	assert.Equal(t, []string{"bkk", "student"}, cfg.Simulator.DeniedPrograms)

	subsidies := cfg.CatalogSubsidies()
	require.Len(t, subsidies, 1)
	assert.Equal(t, "petrol", subsidies[0].ID)
	assert.Equal(t, int64(200), subsidies[0].Amount)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SWS_SERVER_PORT", "7070")
	t.Setenv("SWS_JWT_SECRET", "env-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
}

func TestLoad_RedisAddr(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}
