package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Configuration keys, read from the environment or bound flags.
const (
	KeyInventoryName = "INVENTORY_NAME"
	KeySourceDriver  = "SOURCE_DRIVER"
	KeySourcePath    = "SOURCE_PATH"
	KeyDatabaseDSN   = "DATABASE_DSN"
	KeyDefaultStock  = "DEFAULT_STOCK"
	KeyLogLevel      = "LOG_LEVEL"
	KeyLogFormat     = "LOG_FORMAT"
	KeyImageTimeout  = "IMAGE_TIMEOUT"
)

// Config holds the settings for loading and serving an inventory.
type Config struct {
	InventoryName string        `validate:"required"`
	SourceDriver  string        `validate:"oneof=csv sqlite postgres"`
	SourcePath    string        // CSV file; empty means start with an empty inventory
	DatabaseDSN   string        `validate:"required_unless=SourceDriver csv"`
	DefaultStock  int           `validate:"gte=0"`
	LogLevel      string        `validate:"oneof=debug info warn error"`
	LogFormat     string        `validate:"oneof=console json"`
	ImageTimeout  time.Duration `validate:"gt=0"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyInventoryName, "My Inventory")
	v.SetDefault(KeySourceDriver, "csv")
	v.SetDefault(KeySourcePath, "")
	v.SetDefault(KeyDatabaseDSN, "")
	v.SetDefault(KeyDefaultStock, 10)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyImageTimeout, 10*time.Second)
}

// Load reads the configuration from v, applying defaults and environment
// variables, and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		InventoryName: v.GetString(KeyInventoryName),
		SourceDriver:  v.GetString(KeySourceDriver),
		SourcePath:    v.GetString(KeySourcePath),
		DatabaseDSN:   v.GetString(KeyDatabaseDSN),
		DefaultStock:  v.GetInt(KeyDefaultStock),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFormat:     v.GetString(KeyLogFormat),
		ImageTimeout:  v.GetDuration(KeyImageTimeout),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
