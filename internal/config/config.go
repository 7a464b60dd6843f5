package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	// JWTSecret has no default on purpose: the process must refuse to serve
	// authenticated routes without one.
	JWTSecret string
	JWTTTL    time.Duration

	AdminEmail     string
	AdminUsername  string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string

	CORSOrigins  []string
	OTLPEndpoint string
	MaxBodyBytes int64
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")
	port := getEnvInt("PORT", 3001)
	dbURL := buildDBURL()

	ttlDays := getEnvInt("JWT_TTL_DAYS", 7)

	return Config{
		Env:   env,
		Port:  port,
		DBURL: dbURL,

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    time.Duration(ttlDays) * 24 * time.Hour,

		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminUsername:  getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		AdminFirstName: getEnv("ADMIN_FIRST_NAME", "Admin"),
		AdminLastName:  getEnv("ADMIN_LAST_NAME", "Principal"),

		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "")),
		OTLPEndpoint: os.Getenv("OTLP_ENDPOINT"),
		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

func buildDBURL() string {
	// a full URL wins over the piece-wise vars
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "aprendefacil")
	name := getEnv("DB_NAME", "aprendefacil")
	ssl := getEnv("DB_SSLMODE", "disable")

	cred := user
	// no default password; local trust-auth setups simply leave it unset
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cred += ":" + pass
	}

	return "postgres://" + cred + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
