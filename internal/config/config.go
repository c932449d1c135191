package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the server. Values come from
// the environment (optionally via a .env file); nothing is hardcoded.
type Config struct {
	AWS     AWSConfig
	Storage StorageConfig
	Session SessionConfig
	Redis   RedisConfig
	Upload  UploadConfig
	Port    string
}

// AWSConfig configures the Rekognition/S3/DynamoDB clients.
type AWSConfig struct {
	Region          string
	Endpoint        string // optional override for localstack/minio
	AccessKeyID     string // optional; empty means default credential chain
	SecretAccessKey string
}

// StorageConfig names the external resources the service depends on.
type StorageConfig struct {
	Bucket       string
	CollectionID string
	UsersTable   string
	LogsTable    string
}

type SessionConfig struct {
	SecretKey   string
	ExpiryHours int
	CookieName  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// UploadConfig controls the local temp area for multipart uploads.
type UploadConfig struct {
	TempDir string
	MaxAge  time.Duration
}

// Load reads configuration from viper (env + optional .env file) and
// returns the materialized Config.
func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	viper.BindEnv("aws.region", "AWS_REGION")
	viper.BindEnv("aws.endpoint", "AWS_ENDPOINT_URL")
	viper.BindEnv("aws.access_key_id", "AWS_ACCESS_KEY_ID")
	viper.BindEnv("aws.secret_access_key", "AWS_SECRET_ACCESS_KEY")

	viper.BindEnv("storage.bucket", "FACE_BUCKET_NAME")
	viper.BindEnv("storage.collection_id", "FACE_COLLECTION_ID")
	viper.BindEnv("storage.users_table", "USERS_TABLE")
	viper.BindEnv("storage.logs_table", "LOGS_TABLE")

	viper.BindEnv("session.secret_key", "SESSION_SECRET_KEY")
	viper.BindEnv("session.expiry_hours", "SESSION_EXPIRY_HOURS")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("upload.temp_dir", "UPLOAD_TEMP_DIR")
	viper.BindEnv("port", "PORT")

	viper.SetDefault("aws.region", "us-east-1")
	viper.SetDefault("storage.bucket", "face-auth-storage-bucket")
	viper.SetDefault("storage.collection_id", "my-face-collection")
	viper.SetDefault("storage.users_table", "face-users")
	viper.SetDefault("storage.logs_table", "face-logs")
	viper.SetDefault("session.expiry_hours", 24)
	viper.SetDefault("session.cookie_name", "facegate_session")
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("upload.temp_dir", "./uploads")
	viper.SetDefault("upload.max_age", time.Hour)
	viper.SetDefault("port", "8080")

	return &Config{
		AWS: AWSConfig{
			Region:          viper.GetString("aws.region"),
			Endpoint:        viper.GetString("aws.endpoint"),
			AccessKeyID:     viper.GetString("aws.access_key_id"),
			SecretAccessKey: viper.GetString("aws.secret_access_key"),
		},
		Storage: StorageConfig{
			Bucket:       viper.GetString("storage.bucket"),
			CollectionID: viper.GetString("storage.collection_id"),
			UsersTable:   viper.GetString("storage.users_table"),
			LogsTable:    viper.GetString("storage.logs_table"),
		},
		Session: SessionConfig{
			SecretKey:   viper.GetString("session.secret_key"),
			ExpiryHours: viper.GetInt("session.expiry_hours"),
			CookieName:  viper.GetString("session.cookie_name"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("redis.host"),
			Port:     viper.GetString("redis.port"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Upload: UploadConfig{
			TempDir: viper.GetString("upload.temp_dir"),
			MaxAge:  viper.GetDuration("upload.max_age"),
		},
		Port: viper.GetString("port"),
	}
}
