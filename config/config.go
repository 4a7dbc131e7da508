package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	BackendLocal = "local"
	BackendGCS   = "gcs"

	// FallbackHostName is used when neither PUBLIC_HOST_NAME nor USERNAME is set.
	FallbackHostName = "spad0x"

	// DefaultSeason applies to every profile.
	DefaultSeason = "All"
)

// Profile is a deployment variant of the upload contract.
type Profile struct {
	Name            string
	Extension       string
	DefaultCategory string
}

var profiles = map[string]Profile{
	"png":  {Name: "png", Extension: ".png", DefaultCategory: "Uncategorized"},
	"jpeg": {Name: "jpeg", Extension: ".jpg", DefaultCategory: "Other"},
}

type Settings struct {
	Port string

	DBDriver    string
	DatabaseURL string
	DBLogLevel  string

	StorageBackend string
	UploadDir      string
	PublicHostName string
	PublicBaseURL  string
	GCSBucketName  string
	GCSUploadPath  string

	Profile Profile

	BodyLimitMB    int
	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
}

// Load reads an optional .env file and resolves every setting from the
// environment. Variables already present in the environment win over .env.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	return FromEnv()
}

// FromEnv resolves settings from the process environment only.
func FromEnv() (*Settings, error) {
	s := &Settings{
		Port:           Config("PORT", "3000"),
		DBDriver:       strings.ToLower(Config("DB_DRIVER", DriverSQLite)),
		DBLogLevel:     strings.ToLower(Config("DB_LOG_LEVEL", "warn")),
		StorageBackend: strings.ToLower(Config("STORAGE_BACKEND", BackendLocal)),
		UploadDir:      Config("UPLOAD_DIR", "static/uploads"),
		GCSBucketName:  os.Getenv("GCS_BUCKET_NAME"),
		GCSUploadPath:  Config("GCS_UPLOAD_PATH", "images/"),
		LogLevel:       strings.ToLower(Config("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(Config("LOG_FORMAT", "json")),
	}

	switch s.DBDriver {
	case DriverSQLite:
		s.DatabaseURL = Config("DATABASE_URL", "smartcloset.db")
	case DriverPostgres:
		s.DatabaseURL = os.Getenv("DATABASE_URL")
		if s.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL not set (required for the postgres driver)")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", s.DBDriver)
	}

	switch s.StorageBackend {
	case BackendLocal:
	case BackendGCS:
		if s.GCSBucketName == "" {
			return nil, errors.New("GCS_BUCKET_NAME not set (required for the gcs backend)")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", s.StorageBackend)
	}

	s.PublicHostName = Config("PUBLIC_HOST_NAME", Config("USERNAME", FallbackHostName))
	s.PublicBaseURL = strings.TrimRight(
		Config("PUBLIC_BASE_URL", fmt.Sprintf("https://%s.pythonanywhere.com", s.PublicHostName)), "/")

	profileName := strings.ToLower(Config("IMAGE_PROFILE", "png"))
	profile, ok := profiles[profileName]
	if !ok {
		return nil, fmt.Errorf("unsupported IMAGE_PROFILE %q", profileName)
	}
	if ext := os.Getenv("IMAGE_EXTENSION"); ext != "" {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		profile.Extension = ext
	}
	profile.DefaultCategory = Config("DEFAULT_CATEGORY", profile.DefaultCategory)
	s.Profile = profile

	limit, err := strconv.Atoi(Config("BODY_LIMIT_MB", "16"))
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("invalid BODY_LIMIT_MB %q", os.Getenv("BODY_LIMIT_MB"))
	}
	s.BodyLimitMB = limit

	metricsEnabled, err := strconv.ParseBool(Config("METRICS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid METRICS_ENABLED: %w", err)
	}
	s.MetricsEnabled = metricsEnabled

	return s, nil
}

// Config returns the value of envVar, or fallback when it is unset or empty.
func Config(envVar, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v
	}
	return fallback
}

func (s *Settings) Addr() string {
	return ":" + s.Port
}

func (s *Settings) BodyLimit() int {
	return s.BodyLimitMB * 1024 * 1024
}
