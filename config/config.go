package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Firebase FirebaseConfig
	Redis    RedisConfig
	Media    MediaConfig
	OAuth    OAuthConfig
	Jobs     JobsConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
	// APIKey is the web API key used for Identity Toolkit password and IdP sign-in.
	APIKey string
	// IdentityToolkitURL overrides the Identity Toolkit base URL (emulators, tests).
	IdentityToolkitURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MediaConfig struct {
	Backend string // cloudinary | s3

	CloudinaryUploadURL string
	CloudinaryPreset    string
	CloudinaryAPIKey    string

	S3Bucket        string
	S3Region        string
	S3PublicBaseURL string

	UploadsPerMinute int
	UploadBurst      int
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type JobsConfig struct {
	// LikesReconcileCron enables the likes counter reconciliation job when set.
	LikesReconcileCron string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	// StoreBackend selects firestore or memory for the document store.
	StoreBackend string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Firebase: FirebaseConfig{
			CredentialsPath:    getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:          getEnv("FIREBASE_PROJECT_ID", ""),
			APIKey:             getEnv("FIREBASE_API_KEY", ""),
			IdentityToolkitURL: getEnv("FIREBASE_IDENTITY_TOOLKIT_URL", "https://identitytoolkit.googleapis.com/v1"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Media: MediaConfig{
			Backend:             getEnv("MEDIA_BACKEND", "cloudinary"),
			CloudinaryUploadURL: getEnv("CLOUDINARY_UPLOAD_URL", ""),
			CloudinaryPreset:    getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
			CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			S3Bucket:            getEnv("S3_BUCKET", ""),
			S3Region:            getEnv("S3_REGION", "us-east-1"),
			S3PublicBaseURL:     getEnv("S3_PUBLIC_BASE_URL", ""),
			UploadsPerMinute:    getEnvAsInt("UPLOAD_RATE_PER_MIN", 20),
			UploadBurst:         getEnvAsInt("UPLOAD_BURST", 5),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_OAUTH_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_OAUTH_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_OAUTH_REDIRECT_URL", ""),
		},
		Jobs: JobsConfig{
			LikesReconcileCron: getEnv("LIKES_RECONCILE_CRON", ""),
		},
		App: AppConfig{
			Environment:  getEnv("APP_ENV", "development"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			Version:      getEnv("APP_VERSION", "1.0.0"),
			StoreBackend: getEnv("STORE_BACKEND", "firestore"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.App.StoreBackend {
	case "firestore":
		if c.Firebase.CredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
		}
	case "memory":
	default:
		return fmt.Errorf("STORE_BACKEND must be firestore or memory, got %q", c.App.StoreBackend)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	switch c.Media.Backend {
	case "cloudinary":
		if c.Media.CloudinaryUploadURL == "" {
			return fmt.Errorf("CLOUDINARY_UPLOAD_URL is required")
		}
	case "s3":
		if c.Media.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required")
		}
	default:
		return fmt.Errorf("MEDIA_BACKEND must be cloudinary or s3, got %q", c.Media.Backend)
	}

	if c.Media.UploadsPerMinute <= 0 {
		return fmt.Errorf("UPLOAD_RATE_PER_MIN must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
