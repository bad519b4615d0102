package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Datasets  DatasetsConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Embedding EmbeddingConfig
	Ranking   RankingConfig
	Intent    IntentConfig
	Filters   FiltersConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type DatasetsConfig struct {
	ReportsPath  string
	POSPath      string
	FeedbackPath string
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type EmbeddingConfig struct {
	APIKey     string
	Model      string
	Dim        int
	TimeoutSec int
}

type RankingConfig struct {
	DefaultTopK    int
	BoostThreshold int
	FeedbackWeight float64
}

type IntentConfig struct {
	ConfidenceThreshold float64
	KeywordBonus        float64
}

type FiltersConfig struct {
	LocationKeywords []string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/portal-genie")

	viper.SetEnvPrefix("PORTAL_GENIE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("datasets.reportsPath", "./data/reports-dataset.json")
	viper.SetDefault("datasets.posPath", "./data/pos-dataset.json")
	viper.SetDefault("datasets.feedbackPath", "./data/feedback-log.json")

	viper.SetDefault("sqlite.path", "./data/portalgenie.db")

	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 3600)

	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.dim", 1536)
	viper.SetDefault("embedding.timeoutSec", 15)

	viper.SetDefault("ranking.defaultTopK", 3)
	viper.SetDefault("ranking.boostThreshold", 75)
	viper.SetDefault("ranking.feedbackWeight", 0.05)

	viper.SetDefault("intent.confidenceThreshold", 0.55)
	viper.SetDefault("intent.keywordBonus", 0.1)

	viper.SetDefault("filters.locationKeywords", []string{"Reg1", "Reg2", "Hilary", "All Locations"})

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
