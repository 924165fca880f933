package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all environment-sourced settings. It is built once at
// startup and passed by reference; fields are never mutated afterwards.
type Config struct {
	Host          string
	Port          int
	SecretKey     string
	Debug         bool
	UploadDir     string
	ModelDir      string
	MaxUploadSize int64
	AllowedExts   []string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	FirebaseCredentials string
	FirebaseProjectID   string

	StoreDriver string // "firestore", "sqlite" or "" for auto
	SQLitePath  string

	ModelPath           string
	ConfidenceThreshold float64
	IoUThreshold        float64
	ClassNames          []string

	LogDirectory string
}

// Load reads environment variables (and an optional .env file) into a Config.
func Load() *Config {
	_ = godotenv.Load()

	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = "."
	}

	modelDir := getEnv("MODEL_DIR", filepath.Join(baseDir, "trained_models"))

	return &Config{
		Host:          getEnv("HOST", "0.0.0.0"),
		Port:          getEnvAsInt("PORT", 5000),
		SecretKey:     getEnv("SECRET_KEY", "dev-secret-key-change-in-production"),
		Debug:         getEnv("APP_ENV", "production") == "development",
		UploadDir:     getEnv("UPLOAD_DIR", filepath.Join(baseDir, "uploads")),
		ModelDir:      modelDir,
		MaxUploadSize: getEnvAsInt64("MAX_UPLOAD_SIZE", 10*1024*1024),
		AllowedExts:   getEnvAsList("ALLOWED_EXTENSIONS", "jpg,jpeg,png"),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),

		StoreDriver: getEnv("STORE_DRIVER", ""),
		SQLitePath:  getEnv("SQLITE_PATH", filepath.Join(baseDir, "detections.db")),

		ModelPath:           getEnv("MODEL_PATH", filepath.Join(modelDir, "banana_detection_v1", "weights", "best.onnx")),
		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.5),
		IoUThreshold:        getEnvAsFloat("IOU_THRESHOLD", 0.45),
		ClassNames:          getEnvAsList("CLASS_NAMES", "Mentah,Matang,Busuk"),

		LogDirectory: getEnv("LOG_DIR", filepath.Join(baseDir, "logs")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
