package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/linesmerrill/rider-safety-api/models"
)

// Image moderation providers
const (
	ProviderSightengine = "sightengine"
	ProviderVision      = "vision"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string
	JWTSecret    string

	// text scam classifier
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	ScamModel         string
	ClassifierTimeout time.Duration

	// image moderation
	ImageProvider        string
	SightengineAPIUser   string
	SightengineAPISecret string
	SightengineEndpoint  string
	VisionAPIKey         string
	MaxUploadBytes       int64

	// blob store
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	// rate limiting, RedisAddr empty keeps counters in process
	RedisAddr         string
	RedisPassword     string
	RateLimitMessages int64
	RateLimitUploads  int64
	RateLimitWindow   time.Duration

	// scan worker pool
	ScanWorkers   int
	ScanQueueSize int

	// moderation digest
	SendGridAPIKey  string
	DigestFromEmail string
	DigestEmails    []string
	DigestSchedule  string
}

// New sets up all config related services
func New() *Config {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "production")
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:          os.Getenv("DB_URI"),
		DatabaseName: os.Getenv("DB_NAME"),
		BaseURL:      os.Getenv("BASE_URL"),
		Port:         getEnv("PORT", "8080"),
		Env:          env,
		JWTSecret:    os.Getenv("JWT_SECRET"),

		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		ScamModel:         getEnv("SCAM_MODEL", "gpt-4o-mini"),
		ClassifierTimeout: getDuration("CLASSIFIER_TIMEOUT", 10*time.Second),

		ImageProvider:        strings.ToLower(getEnv("IMAGE_MODERATION_PROVIDER", ProviderSightengine)),
		SightengineAPIUser:   os.Getenv("SIGHTENGINE_API_USER"),
		SightengineAPISecret: os.Getenv("SIGHTENGINE_API_SECRET"),
		SightengineEndpoint:  getEnv("SIGHTENGINE_ENDPOINT", "https://api.sightengine.com/1.0/check.json"),
		VisionAPIKey:         os.Getenv("GOOGLE_VISION_API_KEY"),
		MaxUploadBytes:       getInt64("MAX_UPLOAD_SIZE_MB", 10) << 20,

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "rider-uploads"),

		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RateLimitMessages: getInt64("RATE_LIMIT_MESSAGES", 30),
		RateLimitUploads:  getInt64("RATE_LIMIT_UPLOADS", 10),
		RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", time.Minute),

		ScanWorkers:   int(getInt64("SCAN_WORKERS", 4)),
		ScanQueueSize: int(getInt64("SCAN_QUEUE_SIZE", 256)),

		SendGridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		DigestFromEmail: getEnv("DIGEST_FROM_EMAIL", "no-reply@ridersafety.app"),
		DigestEmails:    splitList(os.Getenv("MODERATION_DIGEST_EMAILS")),
		DigestSchedule:  getEnv("DIGEST_SCHEDULE", "0 13 * * *"),
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().Errorw(message, "status", httpStatusCode, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s, %v", message, err)
	}
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{
		Success: false,
		Error:   msg,
		Code:    codeFor(httpStatusCode),
	})
}

func codeFor(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
