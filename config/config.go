package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	BaseURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTAccessSecret    string
	JWTRefreshSecret   string
	JWTAccessTTLHours  int
	JWTRefreshTTLHours int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers string
	KafkaTopic   string
	KafkaGroupID string

	RazorpayKey    string
	RazorpaySecret string
	// Price of the premium (host) plan in JPY.
	PremiumPlanAmount float64

	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromName  string
	SMTPFromEmail string

	FCMCredentialsPath string
	FCMProjectID       string

	UploadDir string

	// Configured enumerations for event validation. Unknown values are
	// rejected with an invalid-argument error.
	Cities     []string
	Categories []string
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	accessTTL, _ := strconv.Atoi(os.Getenv("JWT_ACCESS_TTL_HOURS"))
	refreshTTL, _ := strconv.Atoi(os.Getenv("JWT_REFRESH_TTL_HOURS"))
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	premiumAmount, _ := strconv.ParseFloat(os.Getenv("PREMIUM_PLAN_AMOUNT"), 64)
	if premiumAmount <= 0 {
		premiumAmount = 500
	}

	return &Config{
		Port:    envOr("PORT", "8080"),
		BaseURL: envOr("BASE_URL", "http://localhost:8080"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTAccessSecret:    os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret:   os.Getenv("JWT_REFRESH_SECRET"),
		JWTAccessTTLHours:  accessTTL,
		JWTRefreshTTLHours: refreshTTL,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   envOr("KAFKA_NOTIFICATION_TOPIC", "kizuna.notifications"),
		KafkaGroupID: envOr("KAFKA_GROUP_ID", "kizuna-notification-dispatcher"),

		RazorpayKey:       os.Getenv("RAZORPAY_KEY_ID"),
		RazorpaySecret:    os.Getenv("RAZORPAY_KEY_SECRET"),
		PremiumPlanAmount: premiumAmount,

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      os.Getenv("SMTP_PORT"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFromName:  envOr("SMTP_FROM_NAME", "KizunaLink"),
		SMTPFromEmail: os.Getenv("SMTP_FROM_EMAIL"),

		FCMCredentialsPath: os.Getenv("FCM_CREDENTIALS_PATH"),
		FCMProjectID:       os.Getenv("FCM_PROJECT_ID"),

		UploadDir: envOr("UPLOAD_DIR", "/data/uploads"),

		Cities:     envList("EVENT_CITIES", "Tokyo,Osaka,Kyoto,Nagoya,Fukuoka,Sapporo"),
		Categories: envList("EVENT_CATEGORIES", "Tech,Outdoors,Social,Learning,Food,Culture"),
	}
}

// IsAllowedCity reports whether city is part of the configured enumeration.
func (c *Config) IsAllowedCity(city string) bool {
	return contains(c.Cities, city)
}

// IsAllowedCategory reports whether category is part of the configured enumeration.
func (c *Config) IsAllowedCategory(category string) bool {
	return contains(c.Categories, category)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key, fallback string) []string {
	raw := envOr(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
