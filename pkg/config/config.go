package config

import (
	"flag"
	"time"
)

type Config struct {
	LogLevel   string
	ListenAddr string

	PostgresAddr     string // Postgres address in host[:port] format
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string

	RedisAddr     string // Redis address in host[:port] format
	RedisUser     string // Redis user
	RedisPassword string // Redis password

	MarktplaatsAPIBase      string
	MarktplaatsAuthBase     string
	MarktplaatsClientID     string
	MarktplaatsClientSecret string

	GeminiAPIKey string

	// PublicBaseURL is the externally reachable prefix under which stored
	// draft images are served.
	PublicBaseURL string

	LimiterFailOpen  bool
	GenerationsLimit int

	CacheCategories  bool
	CategoryCacheTTL time.Duration
}

func New() *Config {
	c := &Config{}

	flag.StringVar(&c.LogLevel, "logLevel", LookupEnvString("LOG_LEVEL", "DEBUG"), "Set log level: DEBUG, INFO, WARNING, ERROR.")
	flag.StringVar(&c.ListenAddr, "listenAddr", LookupEnvString("LISTEN_ADDR", ":8000"), `Address in form of "[host]:port" that HTTP server should be listening on.`)

	flag.StringVar(&c.PostgresAddr, "postgresAddr", LookupEnvString("POSTGRES_ADDR", "127.0.0.1:5432"), "Set PostgreSQL address as host:port, where port is optional (without TLS).")
	flag.StringVar(&c.PostgresDB, "postgresDB", LookupEnvString("POSTGRES_DB", "marktplaatser"), "Set PostgreSQL DB.")
	flag.StringVar(&c.PostgresUser, "postgresUser", LookupEnvString("POSTGRES_USER", "develop"), "Set PostgreSQL user.")
	flag.StringVar(&c.PostgresPassword, "postgresPassword", LookupEnvString("POSTGRES_PASSWORD", "develop"), "Set PostgreSQL password.")

	flag.StringVar(&c.RedisAddr, "redisAddr", LookupEnvString("REDIS_ADDR", "127.0.0.1:6379"), "Redis address in host[:port] format.")
	flag.StringVar(&c.RedisUser, "redisUser", LookupEnvString("REDIS_USER", ""), "Redis user.")
	flag.StringVar(&c.RedisPassword, "redisPassword", LookupEnvString("REDIS_PASSWORD", ""), "Redis password.")

	flag.StringVar(&c.MarktplaatsAPIBase, "marktplaatsAPIBase", LookupEnvString("MARKTPLAATS_API_BASE", "https://api.marktplaats.nl/v1"), "Base URL of the Marktplaats REST API.")
	flag.StringVar(&c.MarktplaatsAuthBase, "marktplaatsAuthBase", LookupEnvString("MARKTPLAATS_AUTH_BASE", "https://auth.marktplaats.nl/accounts/oauth"), "Base URL of the Marktplaats OAuth endpoint.")
	flag.StringVar(&c.MarktplaatsClientID, "marktplaatsClientID", LookupEnvString("MARKTPLAATS_CLIENT_ID", ""), "OAuth client ID for the Marktplaats API.")
	flag.StringVar(&c.MarktplaatsClientSecret, "marktplaatsClientSecret", LookupEnvString("MARKTPLAATS_CLIENT_SECRET", ""), "OAuth client secret for the Marktplaats API.")

	flag.StringVar(&c.GeminiAPIKey, "geminiAPIKey", LookupEnvString("GEMINI_API_KEY", ""), "API key for the Gemini vision model.")

	flag.StringVar(&c.PublicBaseURL, "publicBaseURL", LookupEnvString("PUBLIC_BASE_URL", "http://localhost:8000/draft-images"), "Public URL prefix under which stored draft images are served.")

	flag.BoolVar(&c.LimiterFailOpen, "limiterFailOpen", LookupEnvBool("LIMITER_FAIL_OPEN", false), "Set to make limiter allow request if failed to check limits.")
	flag.IntVar(&c.GenerationsLimit, "generationsLimit", LookupEnvInt("GENERATIONS_LIMIT", 20), "Number of listing generations a single user can run within one hour.")

	flag.BoolVar(&c.CacheCategories, "cacheCategories", LookupEnvBool("CACHE_CATEGORIES", true), "Set to cache the category catalog in redis.")
	flag.DurationVar(&c.CategoryCacheTTL, "categoryCacheTTL", LookupEnvDuration("CATEGORY_CACHE_TTL", 24*time.Hour), "How long the cached category catalog stays valid, in go's time.ParseDuration format.")

	flag.Parse()

	return c
}
