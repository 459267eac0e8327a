package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config carries process-level settings resolved from config.yaml,
// environment variables (TIMEBILL_*), and an optional .env file.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Company  CompanyConfig  `mapstructure:"company"`
	Log      LogConfig      `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// CompanyConfig is the issuing company's letterhead, printed on invoices.
type CompanyConfig struct {
	Name           string  `mapstructure:"name"`
	Address        string  `mapstructure:"address"`
	VATNumber      string  `mapstructure:"vat_number"`
	BankAccount    string  `mapstructure:"bank_account"`
	Email          string  `mapstructure:"email"`
	Website        string  `mapstructure:"website"`
	Tagline        string  `mapstructure:"tagline"`
	Currency       string  `mapstructure:"currency"`
	TaxRatePercent float64 `mapstructure:"tax_rate_percent"`
	PaymentTerms   string  `mapstructure:"payment_terms"`
	DueDays        int     `mapstructure:"due_days"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:timebill.db")
	v.SetDefault("company.currency", "EUR")
	v.SetDefault("company.tax_rate_percent", 21)
	v.SetDefault("company.payment_terms", "Payment due within 14 days.")
	v.SetDefault("company.due_days", 14)
	v.SetDefault("log.level", "info")
}

// Load reads configuration once. A missing config file is not an error;
// defaults plus environment variables are enough to boot.
func Load(log *zap.Logger) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/timebill")
	v.SetEnvPrefix("TIMEBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	} else {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Named("config").Info("config file changed", zap.String("file", e.Name))
		})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
