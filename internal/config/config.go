package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Postgres del store remoto. Vacío = store remoto en memoria (dev).
	DBDSN string
	// Archivo SQLite del almacenamiento local del dispositivo.
	DeviceDBPath string

	PetName       string
	DecayInterval time.Duration
	SaveTimeout   time.Duration
	// Sesiones sin requests ni suscriptores se cierran pasado este tiempo.
	SessionIdle time.Duration

	SupabaseURL     string
	SupabaseAnonKey string

	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string

	LogLevel  string
	LogFormat string
	AppName   string
}

// Load lee .env (si existe) y el entorno.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	decaySeconds, err := loadInt("DECAY_INTERVAL_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	if decaySeconds <= 0 {
		return nil, fmt.Errorf("DECAY_INTERVAL_SECONDS must be positive")
	}

	saveSeconds, err := loadInt("SAVE_TIMEOUT_SECONDS", 5)
	if err != nil {
		return nil, err
	}
	if saveSeconds <= 0 {
		return nil, fmt.Errorf("SAVE_TIMEOUT_SECONDS must be positive")
	}

	idleMinutes, err := loadInt("SESSION_IDLE_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	if idleMinutes < 0 {
		return nil, fmt.Errorf("SESSION_IDLE_MINUTES must not be negative")
	}

	cfg := &Config{
		Port:            loadString("PORT", "8080"),
		DBDSN:           loadString("DB_DSN", ""),
		DeviceDBPath:    loadString("DEVICE_DB_PATH", "data/device.db"),
		PetName:         loadString("PET_NAME", "Anlo"),
		DecayInterval:   time.Duration(decaySeconds) * time.Second,
		SaveTimeout:     time.Duration(saveSeconds) * time.Second,
		SessionIdle:     time.Duration(idleMinutes) * time.Minute,
		SupabaseURL:     loadString("SUPABASE_URL", ""),
		SupabaseAnonKey: loadString("SUPABASE_ANON_KEY", ""),
		MQTTBroker:      loadString("MQTT_BROKER", ""),
		MQTTTopic:       loadString("MQTT_TOPIC", "catvirtual/pet/state"),
		MQTTClientID:    loadString("MQTT_CLIENT_ID", "cat-virtual"),
		LogLevel:        loadString("LOG_LEVEL", "info"),
		LogFormat:       loadString("LOG_FORMAT", "text"),
		AppName:         loadString("APP_NAME", "cat-virtual"),
	}

	if (cfg.SupabaseURL == "") != (cfg.SupabaseAnonKey == "") {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY must be set together")
	}

	return cfg, nil
}

// AuthEnabled indica si hay verificador de tokens; sin él se acepta X-Debug-User-ID.
func (c *Config) AuthEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != ""
}

func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func loadString(key, defValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defValue
}

func loadInt(key string, defValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
