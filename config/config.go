package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Contour   ContourConfig   `mapstructure:"contour"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Log       LogConfig       `mapstructure:"log"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

// KnowledgeConfig путь к YAML/JSON базе норм; пусто - встроенная база
type KnowledgeConfig struct {
	Path string `mapstructure:"path"`
}

// GeminiConfig включается, когда задан Project
type GeminiConfig struct {
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
	Model    string `mapstructure:"model"`
}

// RemoteConfig включается, когда задан Endpoint
type RemoteConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

type ContourConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type PipelineConfig struct {
	Concurrency    int           `mapstructure:"concurrency"`
	BackendTimeout time.Duration `mapstructure:"backend_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func defaults() map[string]any {
	return map[string]any{
		"telegram.token":           "",
		"knowledge.path":           "",
		"gemini.project":           "",
		"gemini.location":          "us-central1",
		"gemini.model":             "gemini-2.0-flash",
		"remote.endpoint":          "",
		"remote.api_key":           "",
		"contour.enabled":          false,
		"pipeline.concurrency":     4,
		"pipeline.backend_timeout": 30 * time.Second,
		"log.level":                "info",
		"log.format":               "text",
	}
}

// Load читает конфигурацию: .env, затем YAML-файл (если указан или найден), затем переменные окружения.
// Ключ telegram.token переопределяется переменной TELEGRAM_TOKEN и т.д.
func Load(path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("safenest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}
