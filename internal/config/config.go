package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config covers both halves of the application: the relay server and the
// terminal client with its local store.
type Config struct {
	AppPort  int    `mapstructure:"APP_PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	OpenAIBaseURL    string `mapstructure:"OPENAI_BASE_URL"`
	AnthropicBaseURL string `mapstructure:"ANTHROPIC_BASE_URL"`
	DeepSeekBaseURL  string `mapstructure:"DEEPSEEK_BASE_URL"`
	AnthropicVersion string `mapstructure:"ANTHROPIC_VERSION"`
	StaticDir        string `mapstructure:"STATIC_DIR"`

	RelayURL        string        `mapstructure:"RELAY_URL"`
	StoreDriver     string        `mapstructure:"STORE_DRIVER"`
	StorePath       string        `mapstructure:"STORE_PATH"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	PersistDebounce time.Duration `mapstructure:"PERSIST_DEBOUNCE"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1")
	viper.SetDefault("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1")
	viper.SetDefault("ANTHROPIC_VERSION", "2023-06-01")
	viper.SetDefault("STATIC_DIR", "./frontend/dist")
	viper.SetDefault("RELAY_URL", "http://localhost:8000")
	viper.SetDefault("STORE_DRIVER", "sqlite")
	viper.SetDefault("STORE_PATH", defaultStorePath())
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("PERSIST_DEBOUNCE", "250ms")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.aiterm")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "webtui.db"
	}
	return filepath.Join(home, ".aiterm", "webtui.db")
}
