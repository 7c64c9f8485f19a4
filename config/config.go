package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	TablePrefix      string

	ProfileDir    string
	DownloadsDir  string
	ExportBaseDir string
	EntryURL      string
	Painel1URL    string
	Painel2URL    string
	Painel3URL    string
	Headless      bool

	PollInterval    time.Duration
	FindTimeout     time.Duration
	OverlayTimeout  time.Duration
	DownloadTimeout time.Duration
	RunTimeout      time.Duration
	MaxRetries      int

	ChromeBin string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	home, _ := os.UserHomeDir()

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "painel"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "painel123"),
		PostgresDB:       getEnv("POSTGRES_DB", "sandbox"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		TablePrefix:      getEnv("TABLE_PREFIX", "tb_"),

		ProfileDir:    getEnv("CHROME_PROFILE_DIR", "./chrome_session_profile"),
		DownloadsDir:  getEnv("DOWNLOADS_DIR", filepath.Join(home, "Downloads")),
		ExportBaseDir: getEnv("EXPORT_BASE_DIR", "./dados"),
		EntryURL:      getEnv("PAINEL_ENTRY_URL", ""),
		Painel1URL:    getEnv("PAINEL1_URL", ""),
		Painel2URL:    getEnv("PAINEL2_URL", ""),
		Painel3URL:    getEnv("PAINEL3_URL", ""),
		Headless:      getEnvBool("HEADLESS", false),

		PollInterval:    getEnvMillis("POLL_INTERVAL_MS", 500),
		FindTimeout:     getEnvSeconds("FIND_TIMEOUT_S", 10),
		OverlayTimeout:  getEnvSeconds("OVERLAY_TIMEOUT_S", 60),
		DownloadTimeout: getEnvSeconds("DOWNLOAD_TIMEOUT_S", 120),
		RunTimeout:      getEnvMinutes("RUN_TIMEOUT_MIN", 90),
		MaxRetries:      getEnvInt("MAX_RETRIES", 2),

		ChromeBin: getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Millisecond
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}

func getEnvMinutes(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Minute
}
