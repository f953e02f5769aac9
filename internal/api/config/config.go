package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例，仅由 cmd 入口设置
var Cfg *Config

const envPrefix = "FIELDCLIP"

// LoadConfig 从文件和环境变量加载配置，configDir 为空时使用 ./configs
func LoadConfig(configDir string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	if configDir == "" {
		configDir = "./configs"
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", 5)

	v.SetDefault("database.dsn", "clips.db")
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 50)
	v.SetDefault("database.max_lifetime", 30)
	v.SetDefault("database.slow_threshold_ms", 200)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.stats_ttl", 60)

	v.SetDefault("registry.mode", "static")
	v.SetDefault("registry.timeout", 5)

	v.SetDefault("kafka.consumer.session_timeout", 10)
	v.SetDefault("kafka.consumer.heartbeat_interval", 3)
	v.SetDefault("kafka.consumer.rebalance_timeout", 60)
	v.SetDefault("kafka.consumer.max_processing_time", 1)
	v.SetDefault("kafka.consumer.initial_offset", "newest")

	v.SetDefault("engagement.enabled", false)
	v.SetDefault("engagement.topic", "clip-engagement")
	v.SetDefault("engagement.group_id", "fieldclip-engagement")
	v.SetDefault("engagement.flush_spec", "*/30 * * * * *")

	v.SetDefault("logstash.index", "logstash-fieldclip")
}

// Validate 校验启动所需的配置
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DB.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	switch c.Registry.Mode {
	case "static":
	case "http":
		if c.Registry.BaseURL == "" {
			return errors.New("registry.base_url is required in http mode")
		}
	default:
		return fmt.Errorf("unsupported registry.mode %q", c.Registry.Mode)
	}
	if c.Engagement.Enabled {
		if c.Redis.Addr == "" {
			return errors.New("engagement requires redis.addr")
		}
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("engagement requires kafka.brokers")
		}
	}
	return nil
}
