package config

import (
	"fmt"
	"strings"
	"time"

	"subsidy-wallet-service/internal/core/domain"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Catalog   []ProgramSeed   `mapstructure:"catalog"`
	Merchants []MerchantSeed  `mapstructure:"merchants"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// SimulatorConfig drives the mock transaction flows. The delays stand in
// for real network and settlement latency; the denied list is the
// eligibility policy table.
type SimulatorConfig struct {
	EligibilityCheckDelay time.Duration `mapstructure:"eligibility_check_delay"`
	SettlementDelay       time.Duration `mapstructure:"settlement_delay"`
	SpendDelay            time.Duration `mapstructure:"spend_delay"`
	ScanDelay             time.Duration `mapstructure:"scan_delay"`
	DeniedPrograms        []string      `mapstructure:"denied_programs"`
	OutcomeTTL            time.Duration `mapstructure:"outcome_ttl"`
}

// ProgramSeed is one subsidy program in the seed catalog.
type ProgramSeed struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Amount      int64  `mapstructure:"amount"`
	Claimed     bool   `mapstructure:"claimed"` // seeded already-claimed
}

// MerchantSeed is one mock merchant in the directory.
type MerchantSeed struct {
	Code              string   `mapstructure:"code"`
	Name              string   `mapstructure:"name"`
	Location          string   `mapstructure:"location"`
	AcceptedSubsidies []string `mapstructure:"accepted_subsidies"`
}

// CatalogSubsidies converts the seed catalog into domain records.
func (c *Config) CatalogSubsidies() []domain.Subsidy {
	out := make([]domain.Subsidy, 0, len(c.Catalog))
	for _, seed := range c.Catalog {
		status := domain.SubsidyStatusAvailable
		if seed.Claimed {
			status = domain.SubsidyStatusClaimed
		}
		out = append(out, domain.Subsidy{
			ID:          seed.ID,
			Name:        seed.Name,
			Description: seed.Description,
			Amount:      seed.Amount,
			Status:      status,
		})
	}
	return out
}

// DirectoryMerchants converts the merchant seeds into domain records.
func (c *Config) DirectoryMerchants() []domain.Merchant {
	out := make([]domain.Merchant, 0, len(c.Merchants))
	for _, seed := range c.Merchants {
		out = append(out, domain.Merchant{
			Code:              seed.Code,
			Name:              seed.Name,
			Location:          seed.Location,
			AcceptedSubsidies: seed.AcceptedSubsidies,
		})
	}
	return out
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: SWS_ (Subsidy Wallet
// Service). Nested keys use underscore: SWS_SERVER_PORT, SWS_JWT_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "subsidy-wallet-service")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Mock timings: 2s eligibility check, 2s settlement, 2s spend
	// confirmation, 1.5s QR/card scans.
	v.SetDefault("simulator.eligibility_check_delay", "2s")
	v.SetDefault("simulator.settlement_delay", "2s")
	v.SetDefault("simulator.spend_delay", "2s")
	v.SetDefault("simulator.scan_delay", "1500ms")
	v.SetDefault("simulator.denied_programs", []string{"mykasih"})
	v.SetDefault("simulator.outcome_ttl", "24h")

	// Seed catalog.
	v.SetDefault("catalog", []map[string]interface{}{
		{
			"id":          "bkk",
			"name":        "Bantuan Keluarga Malaysia (BKK)",
			"description": "Financial aid for low-income households.",
			"amount":      600,
			"claimed":     false,
		},
		{
			"id":          "mykasih",
			"name":        "MyKasih Food Aid",
			"description": "Cashless food aid for eligible families.",
			"amount":      50,
			"claimed":     false,
		},
		{
			"id":          "student",
			"name":        "Student Book Voucher",
			"description": "Voucher for purchasing books and stationery.",
			"amount":      100,
			"claimed":     true,
		},
	})

	// Mock merchant seed. Does not accept the student voucher.
	v.SetDefault("merchants", []map[string]interface{}{
		{
			"code":               "nsk-kl",
			"name":               "NSK Trade City",
			"location":           "Kuala Lumpur",
			"accepted_subsidies": []string{"bkk", "mykasih"},
		},
	})

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: SWS_SERVER_PORT -> server.port
	v.SetEnvPrefix("SWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
