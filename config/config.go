package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	// 曲库目录服务（Catalog Web API）
	CatalogAPIURL       string
	CatalogAuthURL      string
	CatalogTokenURL     string
	CatalogClientID     string
	CatalogClientSecret string
	CatalogRedirectURI  string
	CatalogMarket       string
	CatalogTimeout      time.Duration

	// Token 持久化: "file" 或 "redis"
	TokenStore string
	TokenFile  string

	// 保存的队列存放在 Redis 中
	SavedQueues bool

	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// 本地曲库: "memory" 或 "mysql"
	LibraryBackend string
	SearchDelay    time.Duration
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string

	// MinIO 用于解析 minio:// 媒体地址
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioRegion    string

	// 播放器
	PlayerVolume float64
	PlayerTick   time.Duration

	// 控制服务
	ServerAddr          string
	ControlPasswordHash string
	JWTSecret           string
	JWTTTL              time.Duration

	// 日志
	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("300ms", "1s").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// defaultTokenFile returns $XDG_CONFIG_HOME/sonicbar/tokens.json or a local fallback.
func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".sonicbar", "tokens.json")
	}
	return filepath.Join(dir, "sonicbar", "tokens.json")
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		CatalogAPIURL:       strings.TrimRight(getEnv("CATALOG_API_URL", "https://api.spotify.com/v1"), "/"),
		CatalogAuthURL:      getEnv("CATALOG_AUTH_URL", "https://accounts.spotify.com/authorize"),
		CatalogTokenURL:     getEnv("CATALOG_TOKEN_URL", "https://accounts.spotify.com/api/token"),
		CatalogClientID:     getEnv("CATALOG_CLIENT_ID", ""),
		CatalogClientSecret: os.Getenv("CATALOG_CLIENT_SECRET"), // 密钥不设默认值
		CatalogRedirectURI:  getEnv("CATALOG_REDIRECT_URI", "http://localhost:3000/callback"),
		CatalogMarket:       getEnv("CATALOG_MARKET", "US"),
		CatalogTimeout:      getEnvDuration("CATALOG_TIMEOUT", 10*time.Second),

		TokenStore: getEnv("TOKEN_STORE", "file"),
		TokenFile:  getEnv("TOKEN_FILE", defaultTokenFile()),

		SavedQueues: getEnvBool("SAVED_QUEUES", false),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LibraryBackend: getEnv("LIBRARY_BACKEND", "memory"),
		SearchDelay:    getEnvDuration("SEARCH_DELAY", 300*time.Millisecond),
		DBHost:         getEnv("DB_HOST", "127.0.0.1"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBUser:         getEnv("DB_USER", "root"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         getEnv("DB_NAME", "sonicbar"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),

		PlayerVolume: getEnvFloat("PLAYER_VOLUME", 0.7),
		PlayerTick:   getEnvDuration("PLAYER_TICK", time.Second),

		ServerAddr:          getEnv("SERVER_ADDR", ":8080"),
		ControlPasswordHash: os.Getenv("CONTROL_PASSWORD_HASH"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWTTTL:              getEnvDuration("JWT_TTL", 24*time.Hour),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// NeedsRedis reports whether any configured feature stores data in Redis.
func (c *Config) NeedsRedis() bool {
	return c.SavedQueues || strings.EqualFold(c.TokenStore, "redis")
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}
