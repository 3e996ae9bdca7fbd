package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App   AppConfig   `mapstructure:"app"`
	DB    DBConfig    `mapstructure:"db"`
	Redis RedisConfig `mapstructure:"redis"`
	Kafka KafkaConfig `mapstructure:"kafka"`
	Tari  TariConfig  `mapstructure:"tari"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MQType   string `mapstructure:"mq_type"` // "redis" or "kafka"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

type TariConfig struct {
	Network       string        `mapstructure:"network"`        // 名称或数字，如 "igor" / "0x24"
	RelayInterval time.Duration `mapstructure:"relay_interval"` // outbox 中继轮询间隔
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	EventsTopic   string        `mapstructure:"events_topic"`
}

var Global Config

// Init loads config.yaml from . or ./config, applies environment overrides
// (TARI_NETWORK overrides tari.network) and fills Global.
func Init() {
	v, err := Load()
	if err != nil {
		log.Fatalf("Fatal error config file: %s \n", err)
	}
	if err := v.Unmarshal(&Global); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// Load builds the viper instance without touching Global.
func Load() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name
	v.AddConfigPath(".")      // optionally look for config in the working directory
	v.AddConfigPath("./config")

	// 环境变量设置
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// Config file not found; fall back to defaults and environment variables
		log.Printf("Warning: Config file not found, using defaults and environment variables")
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http_port", "8080")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "tari_user")
	v.SetDefault("db.password", "tari_password")
	v.SetDefault("db.name", "tari_db")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.mq_type", "redis")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})

	v.SetDefault("tari.network", "localnet")
	v.SetDefault("tari.relay_interval", 500*time.Millisecond)
	v.SetDefault("tari.cache_ttl", 10*time.Minute)
	v.SetDefault("tari.events_topic", "tari.transactions")
}
