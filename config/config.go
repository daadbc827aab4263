package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

var (
	config     *Config
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMigrationMode string // "auto" (default), "alter", "drop"

	// Server
	ServerPort string

	// Redis
	RedisHost string
	RedisPort string
	RedisDB   int

	// MQTT sensor telemetry (optional)
	MQTTBrokerURL string
	MQTTClientID  string
	MQTTUsername  string
	MQTTPassword  string

	// Weather providers
	WeatherAPIKey  string
	WeatherAPIURL  string
	OpenMeteoURL   string
	OpenWeatherKey string
	OpenWeatherURL string

	// AI providers
	GeminiAPIKeys []string // primary pool, rotated on rate limits
	GeminiModel   string
	OpenAIKey     string
	OpenAIURL     string

	// Default location when the client sends none
	DefaultLat  string
	DefaultLon  string
	DefaultCity string

	// JWT Authentication
	JWTSecretKey string

	// Admin
	DefaultAdminPassword string
}

// LoadConfig loads config from environment variables based on ENV_TYPE
func LoadConfig() *Config {
	// Get environment type (default to LOCAL if not set)
	envType := getEnv("ENV_TYPE", "LOCAL")
	prefix := ""

	if strings.ToUpper(envType) == "LOCAL" {
		prefix = "LOCAL_"
	} else if strings.ToUpper(envType) == "SERVER" {
		prefix = "SERVER_"
	} else {
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		prefix = "LOCAL_"
		envType = "LOCAL"
	}

	// Gemini keys: empty slots are skipped so rotation only sees usable keys
	geminiKeys := []string{}
	for _, key := range []string{
		strings.TrimSpace(getEnv("GEMINI_API_KEY", "")),
		strings.TrimSpace(getEnv("GEMINI_API_KEY_2", "")),
	} {
		if key != "" {
			geminiKeys = append(geminiKeys, key)
		}
	}

	return &Config{
		// Environment type
		EnvType: envType,

		// Database config - use environment-specific variables if available
		DBHost:          getEnv(prefix+"DB_HOST", getEnv("DB_HOST", "localhost")),
		DBUser:          getEnv(prefix+"DB_USER", getEnv("DB_USER", "root")),
		DBPassword:      getEnv(prefix+"DB_PASSWORD", getEnv("DB_PASSWORD", "")),
		DBName:          getEnv(prefix+"DB_NAME", getEnv("DB_NAME", "agrisense_db")),
		DBPort:          getEnv(prefix+"DB_PORT", getEnv("DB_PORT", "3306")),
		DBMigrationMode: getEnv(prefix+"DB_MIGRATION_MODE", getEnv("DB_MIGRATION_MODE", "auto")),

		// Server config
		ServerPort: getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "8080")),

		// Redis config
		RedisHost: getEnv(prefix+"REDIS_HOST", getEnv("REDIS_HOST", "localhost")),
		RedisPort: getEnv(prefix+"REDIS_PORT", getEnv("REDIS_PORT", "6379")),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),

		// MQTT config - telemetry subscriber is skipped when broker URL is empty
		MQTTBrokerURL: getEnv("MQTT_BROKER_URL", ""),
		MQTTClientID:  getEnv("MQTT_CLIENT_ID", "agrisense-backend"),
		MQTTUsername:  getEnv("MQTT_USERNAME", ""),
		MQTTPassword:  getEnv("MQTT_PASSWORD", ""),

		// Weather provider config - a missing key disables the provider, never crashes
		WeatherAPIKey:  getEnv("WEATHERAPI_KEY", ""),
		WeatherAPIURL:  getEnv("WEATHERAPI_BASE_URL", "https://api.weatherapi.com/v1"),
		OpenMeteoURL:   getEnv("OPENMETEO_BASE_URL", "https://api.open-meteo.com/v1"),
		OpenWeatherKey: getEnv("OPENWEATHER_API_KEY", ""),
		OpenWeatherURL: getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),

		// AI provider config
		GeminiAPIKeys: geminiKeys,
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIKey:     strings.TrimSpace(getEnv("OPENAI_API_KEY", "")),
		OpenAIURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		// Default location (Mumbai)
		DefaultLat:  getEnv("DEFAULT_LOCATION_LAT", "19.0760"),
		DefaultLon:  getEnv("DEFAULT_LOCATION_LON", "72.8777"),
		DefaultCity: getEnv("DEFAULT_LOCATION_LABEL", "Mumbai"),

		// JWT Config
		JWTSecretKey: getEnv("JWT_SECRET", "agrisense-secret-key-change-in-production"),

		// Admin Config
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),
	}
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		config = LoadConfig()
	})
	return config
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local&allowNativePasswords=true&multiStatements=true"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
