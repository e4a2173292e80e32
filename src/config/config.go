package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config アプリケーション設定
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Storage  StorageConfig
	S3       S3Config
	Auth     AuthConfig
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	UploadMaxBytes int64
}

// DatabaseConfig データベース設定
type DatabaseConfig struct {
	Backend    string // postgres / sqlite / memory
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// LogConfig ログ設定
type LogConfig struct {
	Level          string
	Directory      string
	UploadEnabled  bool
	UploadMaxAge   time.Duration
	UploadInterval time.Duration
	UploadBucket   string
}

// StorageConfig 写真ファイルの保存先
type StorageConfig struct {
	Backend        string // s3 / local
	MediaDirectory string
	MediaURLPrefix string
}

// S3Config S3設定
type S3Config struct {
	Endpoint        string
	PublicURL       string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	UseSSL          bool
}

// AuthConfig 認証設定
type AuthConfig struct {
	JWTSecret    string
	JWTExpiresIn time.Duration
}

// LoadConfig 環境変数から設定を読み込み
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
			UploadMaxBytes: int64(getIntEnv("UPLOAD_MAX_BYTES", 10<<20)),
		},
		Database: DatabaseConfig{
			Backend:    getEnv("DATA_BACKEND", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getIntEnv("DB_PORT", 5432),
			User:       getEnv("DB_USER", "diary"),
			Password:   getEnv("DB_PASSWORD", "diary"),
			Name:       getEnv("DB_NAME", "mood_diary"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_DB_PATH", "./data/diary.db"),
		},
		Log: LogConfig{
			Level:          getEnv("LOG_LEVEL", "info"),
			Directory:      getEnv("LOG_DIRECTORY", "logs"),
			UploadEnabled:  getBoolEnv("LOG_UPLOAD_ENABLED", false),
			UploadMaxAge:   getDurationEnv("LOG_UPLOAD_MAX_AGE", 24*time.Hour),
			UploadInterval: getDurationEnv("LOG_UPLOAD_INTERVAL", 1*time.Hour),
			UploadBucket:   getEnv("LOG_UPLOAD_BUCKET", "mood-diary-logs"),
		},
		Storage: StorageConfig{
			Backend:        getEnv("STORAGE_BACKEND", "local"),
			MediaDirectory: getEnv("MEDIA_DIRECTORY", "media"),
			MediaURLPrefix: getEnv("MEDIA_URL_PREFIX", "/media/"),
		},
		S3: S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", "http://localhost:9000"), // MinIO用のデフォルト
			PublicURL:       getEnv("S3_PUBLIC_URL", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", "mood-diary-photos"),
			UseSSL:          getBoolEnv("S3_USE_SSL", false),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", "change-me-in-production"),
			JWTExpiresIn: getDurationEnv("JWT_EXPIRES_IN", 24*time.Hour),
		},
	}
}

// getEnv 環境変数を取得（デフォルト値付き）
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv 環境変数をboolで取得
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getIntEnv 環境変数をintで取得
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv 環境変数をtime.Durationで取得
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getListEnv カンマ区切りの環境変数を取得
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
