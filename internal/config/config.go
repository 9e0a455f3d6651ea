package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	SAP     SAPConfig
	Cache   CacheConfig
	Analyze AnalyzeConfig
	Archive ArchiveConfig
	LLM     LLMConfig
}

// SAPConfig carries the connection settings for the remote ADT backend.
type SAPConfig struct {
	BaseURL   string
	Client    string
	User      string
	Password  string
	AuthType  string // "basic" or "jwt"
	JWTToken  string
	VerifySSL bool

	// Tiered request timeouts: probes are cheap existence checks, source and
	// enhancement fetches run on the default tier, search on the long tier.
	TimeoutDefault time.Duration
	TimeoutProbe   time.Duration
	TimeoutLong    time.Duration
}

type CacheConfig struct {
	SourceEntries int
	SourceTTL     time.Duration
}

type AnalyzeConfig struct {
	Workers int
}

type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type LLMConfig struct {
	Enabled bool
	Model   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8082", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	cfg := &Config{
		Port:    *port,
		SAP:     loadSAPConfig(),
		Cache:   loadCacheConfig(),
		Analyze: loadAnalyzeConfig(),
		Archive: loadArchiveConfig(),
		LLM:     loadLLMConfig(),
	}
	return cfg, nil
}

func loadSAPConfig() SAPConfig {
	authType := strings.ToLower(strings.TrimSpace(os.Getenv("SAP_AUTH_TYPE")))
	if authType == "" {
		authType = "basic"
	}
	return SAPConfig{
		BaseURL:        strings.TrimRight(strings.TrimSpace(os.Getenv("SAP_URL")), "/"),
		Client:         strings.TrimSpace(os.Getenv("SAP_CLIENT")),
		User:           strings.TrimSpace(os.Getenv("SAP_USER")),
		Password:       os.Getenv("SAP_PASS"),
		AuthType:       authType,
		JWTToken:       strings.TrimSpace(os.Getenv("SAP_JWT_TOKEN")),
		VerifySSL:      envBool("SAP_VERIFY_SSL", true),
		TimeoutDefault: envSeconds("SAP_TIMEOUT_DEFAULT", 45*time.Second),
		TimeoutProbe:   envSeconds("SAP_TIMEOUT_PROBE", 15*time.Second),
		TimeoutLong:    envSeconds("SAP_TIMEOUT_LONG", 60*time.Second),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		SourceEntries: envInt("SOURCE_CACHE_ENTRIES", 256),
		SourceTTL:     envSeconds("SOURCE_CACHE_TTL", 60*time.Second),
	}
}

func loadAnalyzeConfig() AnalyzeConfig {
	return AnalyzeConfig{
		Workers: envInt("ANALYZE_WORKERS", 4),
	}
}

func loadArchiveConfig() ArchiveConfig {
	endpoint := strings.TrimSpace(os.Getenv("ARCHIVE_S3_ENDPOINT"))
	return ArchiveConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_REGION")), "us-east-1"),
		AccessKey: strings.TrimSpace(os.Getenv("ARCHIVE_S3_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("ARCHIVE_S3_SECRET_KEY")),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_BUCKET")), "abaplens-reports"),
		UseSSL:    envBool("ARCHIVE_S3_USE_SSL", true),
	}
}

func loadLLMConfig() LLMConfig {
	return LLMConfig{
		Enabled: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")) != "",
		Model:   firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_MODEL")), "gemini-2.0-flash"),
	}
}

// Validate checks the auth settings before any connection is attempted.
func (c *SAPConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("config: SAP_URL is required")
	}
	switch c.AuthType {
	case "jwt":
		if c.JWTToken == "" {
			return fmt.Errorf("config: jwt auth requires SAP_JWT_TOKEN")
		}
	case "basic":
		if c.Client == "" || c.User == "" || c.Password == "" {
			return fmt.Errorf("config: basic auth requires SAP_CLIENT, SAP_USER and SAP_PASS")
		}
	default:
		return fmt.Errorf("config: unsupported SAP_AUTH_TYPE %q (want basic or jwt)", c.AuthType)
	}
	return nil
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
