package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Inventory InventoryConfig
	Ingest    IngestConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConcurrentTx int64
}

// DSN renders the lib/pq keyword/value connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// StorageConfig selects the repository backend: "postgres" or "memory".
type StorageConfig struct {
	Driver string
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	ProductTTLSeconds int
}

type InventoryConfig struct {
	DefaultLowStockThreshold int
}

type IngestConfig struct {
	Port                 string
	WorkerCount          int
	DriveCredentialsJSON string
	DriveFolderID        string
	S3Endpoint           string
	S3AccessKey          string
	S3SecretKey          string
	S3Bucket             string
	S3UseSSL             bool
}

type LogConfig struct {
	Level string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults(viper.GetViper())
		viper.AutomaticEnv()

		instance = fromViper(viper.GetViper())
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "retailpulse")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONCURRENT_TX", 10)
	v.SetDefault("STORAGE_DRIVER", "postgres")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_PRODUCT_TTL_SECONDS", 300)
	v.SetDefault("INVENTORY_DEFAULT_LOW_STOCK_THRESHOLD", 10)
	v.SetDefault("INGEST_PORT", "8081")
	v.SetDefault("INGEST_WORKER_COUNT", 4)
	v.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	v.SetDefault("GOOGLE_DRIVE_FOLDER_ID", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "sales-exports")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("LOG_LEVEL", "")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConcurrentTx: v.GetInt64("DB_MAX_CONCURRENT_TX"),
		},
		Storage: StorageConfig{
			Driver: v.GetString("STORAGE_DRIVER"),
		},
		Cache: CacheConfig{
			Enabled:           v.GetBool("CACHE_ENABLED"),
			RedisURL:          v.GetString("REDIS_URL"),
			RedisHost:         v.GetString("REDIS_HOST"),
			RedisPort:         v.GetString("REDIS_PORT"),
			RedisPassword:     v.GetString("REDIS_PASSWORD"),
			RedisDB:           v.GetInt("REDIS_DB"),
			ProductTTLSeconds: v.GetInt("CACHE_PRODUCT_TTL_SECONDS"),
		},
		Inventory: InventoryConfig{
			DefaultLowStockThreshold: v.GetInt("INVENTORY_DEFAULT_LOW_STOCK_THRESHOLD"),
		},
		Ingest: IngestConfig{
			Port:                 v.GetString("INGEST_PORT"),
			WorkerCount:          v.GetInt("INGEST_WORKER_COUNT"),
			DriveCredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			DriveFolderID:        v.GetString("GOOGLE_DRIVE_FOLDER_ID"),
			S3Endpoint:           v.GetString("S3_ENDPOINT"),
			S3AccessKey:          v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:          v.GetString("S3_SECRET_KEY"),
			S3Bucket:             v.GetString("S3_BUCKET"),
			S3UseSSL:             v.GetBool("S3_USE_SSL"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}
