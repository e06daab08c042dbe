package config

import (
	"errors"
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Postgres  DBConfig
	Redis     RedisConfig
	S3        S3Config
	Storage   StorageConfig
	Transcode TranscodeConfig
	Catalog   CatalogConfig
	Worker    WorkerConfig
	Logger    Logger
}

type ServerConfig struct {
	AppVersion   string
	Port         string
	Mode         string
	JwtSecretKey string
}

type WorkerConfig struct {
	WorkerCount int
	MaxCPUUsage float64
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PgDriver string
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	JobQueueKey   string
	ProgressKey   string
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

type StorageConfig struct {
	Backend           string
	Path              string
	PublicBaseURL     string
	MaxUploadSizeMB   int64
	AllowedExtensions []string
}

type TranscodeConfig struct {
	Qualities       []string
	DefaultQuality  string
	StepTimeoutMin  int
	ThumbnailOffset float64
	PreviewOffset   float64
	PreviewDuration float64
}

type CatalogConfig struct {
	BaseURL    string
	TimeoutSec int
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.Server.Mode == "" {
		log.Println("server mode not set, defaulting to development")
		c.Server.Mode = "development"
	}
	return &c, nil
}

func (c *StorageConfig) MaxUploadSizeBytes() int64 {
	return c.MaxUploadSizeMB * 1024 * 1024
}
