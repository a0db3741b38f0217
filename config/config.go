package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	CSRFTTL     time.Duration
	PerPage     int
	Debug       bool
}

// ParseFlags reads configuration from flags, with defaults taken from the
// environment (a .env file is loaded first when present). Flags win.
func ParseFlags() (cfg Config, err error) {
	_ = godotenv.Load()

	var host string
	flag.StringVar(&host, "host", envOr("LEADBOARD_HOST", "0.0.0.0"), "listen host name")
	var port uint
	flag.UintVar(&port, "port", uint(envIntOr("LEADBOARD_PORT", 8080)), "listen port number")
	flag.StringVar(&cfg.DBUrl, "db-url", envOr("LEADBOARD_DB_URL", "leadboard.sqlite"), "path to SQLite3 DB file")
	flag.StringVar(&cfg.TokenSecret, "token-secret", os.Getenv("LEADBOARD_TOKEN_SECRET"), "secret key for token encryption and decryption")
	var tokenTTL uint
	flag.UintVar(&tokenTTL, "token-ttl", uint(envIntOr("LEADBOARD_TOKEN_TTL", 120)), "token TTL in seconds")
	var csrfTTL uint
	flag.UintVar(&csrfTTL, "csrf-ttl", uint(envIntOr("LEADBOARD_CSRF_TTL", 900)), "CSRF token TTL in seconds")
	flag.IntVar(&cfg.PerPage, "per-page", envIntOr("LEADBOARD_PER_PAGE", 10), "dashboard page size")
	flag.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(tokenTTL) * time.Second
	cfg.CSRFTTL = time.Duration(csrfTTL) * time.Second

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
