package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage points at an S3-compatible bucket (Supabase Storage, R2).
type Storage struct {
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Google struct {
	ClientID            string
	ClientSecret        string
	LoginRedirectURI    string
	AdsenseRedirectURI  string
	ServiceAccountJSON  string
	AnalyticsPropertyID string
	SearchConsoleSite   string
	AdsenseAccount      string
}

type Config struct {
	Port          string
	SiteURL       string
	SiteName      string
	SiteAuthor    string
	SiteTagline   string
	FrontendURL   string
	PostgresURI   string
	RedisURI      string
	SecretKey     string
	CookieName    string
	AdminEmails   []string
	Google        Google
	Storage       Storage
	MaxUploadSize int64
	PageSize      int
	CacheTTL      time.Duration
	ReactionLimit int
	OGFontPaths   []string
	// ProxyHeader carries the client IP when requests arrive through
	// TrustedProxies; empty means clients connect directly.
	ProxyHeader    string
	TrustedProxies []string
}

func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "3000"),
		SiteURL:     strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
		SiteName:    getEnv("SITE_NAME", "Blog"),
		SiteAuthor:  getEnv("SITE_AUTHOR", ""),
		SiteTagline: getEnv("SITE_TAGLINE", ""),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		PostgresURI: getEnv("POSTGRES_URI", ""),
		RedisURI:    getEnv("REDIS_URI", "localhost:6379"),
		SecretKey:   getEnv("SECRET_KEY", ""),
		CookieName:  getEnv("COOKIE_NAME", "blog_session"),
		AdminEmails: lower(getEnvList("ADMIN_EMAILS")),
		Google: Google{
			ClientID:            getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret:        getEnv("GOOGLE_CLIENT_SECRET", ""),
			LoginRedirectURI:    getEnv("GOOGLE_LOGIN_REDIRECT_URI", "http://localhost:3000/login/callback"),
			AdsenseRedirectURI:  getEnv("GOOGLE_ADSENSE_REDIRECT_URI", "http://localhost:3000/api/admin/adsense/callback"),
			ServiceAccountJSON:  getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
			AnalyticsPropertyID: getEnv("GA_PROPERTY_ID", ""),
			SearchConsoleSite:   getEnv("SEARCH_CONSOLE_SITE_URL", ""),
			AdsenseAccount:      getEnv("ADSENSE_ACCOUNT", ""),
		},
		Storage: Storage{
			Endpoint:   getEnv("STORAGE_ENDPOINT", ""),
			Region:     getEnv("STORAGE_REGION", "auto"),
			AccessKey:  getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:  getEnv("STORAGE_SECRET_KEY", ""),
			BucketName: getEnv("STORAGE_BUCKET", "images"),
			PublicURL:  strings.TrimRight(getEnv("STORAGE_PUBLIC_URL", ""), "/"),
		},
		MaxUploadSize:  int64(getEnvInt("MAX_UPLOAD_MB", 10)) * 1024 * 1024,
		PageSize:       getEnvInt("PAGE_SIZE", 12),
		CacheTTL:       getEnvDuration("ANALYTICS_CACHE_TTL", time.Hour),
		ReactionLimit:  getEnvInt("REACTION_LIMIT_PER_MINUTE", 5),
		OGFontPaths:    getEnvList("OG_FONT_PATHS"),
		ProxyHeader:    getEnv("PROXY_HEADER", ""),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string) []string {
	var list []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func lower(list []string) []string {
	for i := range list {
		list[i] = strings.ToLower(list[i])
	}
	return list
}
