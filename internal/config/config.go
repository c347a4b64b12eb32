package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string
	GRPCAddr string // "" disables the gRPC health server

	// DB
	Env        string // "dev" | "prod"
	DBPath     string // e.g. "./data/checkpoint.db"
	RosterPath string // optional YAML roster loaded at startup

	// Kiosk behaviour
	DebounceWindow   time.Duration
	DebounceManual   bool
	StrictSequencing bool
	RejectAmbiguous  bool

	// KioskLocations preselects locations for kiosks that have none saved,
	// from CHECKPOINT_KIOSK_LOCATIONS="front=front-desk,shop=workshop".
	KioskLocations map[string]string

	// Per-kiosk check-in rate limit; 0 disables it.
	RateLimitPerMin int
	RateLimitBurst  int

	HealthInterval time.Duration
	LogLevel       string
}

func FromEnv() Config {
	env := strings.ToLower(getenvDefault("CHECKPOINT_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	return Config{
		HTTPAddr: getenvDefault("CHECKPOINT_HTTP_ADDR", ":8080"),
		GRPCAddr: os.Getenv("CHECKPOINT_GRPC_ADDR"),

		Env:        env,
		DBPath:     getenvDefault("CHECKPOINT_DB_PATH", "./data/checkpoint.db"),
		RosterPath: strings.TrimSpace(os.Getenv("CHECKPOINT_ROSTER_PATH")),

		DebounceWindow:   getenvDuration("CHECKPOINT_DEBOUNCE_WINDOW", 5*time.Second),
		DebounceManual:   getenvBool("CHECKPOINT_DEBOUNCE_MANUAL"),
		StrictSequencing: getenvBool("CHECKPOINT_STRICT_SEQUENCING"),
		RejectAmbiguous:  getenvBool("CHECKPOINT_REJECT_AMBIGUOUS"),

		KioskLocations: splitPairs(splitCSV(os.Getenv("CHECKPOINT_KIOSK_LOCATIONS"))),

		RateLimitPerMin: getenvInt("CHECKPOINT_RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:  getenvInt("CHECKPOINT_RATE_LIMIT_BURST", 20),

		HealthInterval: getenvDuration("CHECKPOINT_HEALTH_INTERVAL", 15*time.Second),
		LogLevel:       getenvDefault("CHECKPOINT_LOG_LEVEL", "info"),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvBool(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return strings.EqualFold(v, "true") || v == "1"
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// getenvDuration accepts time.ParseDuration syntax or a bare number of
// milliseconds.
func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitPairs turns "k=v" entries into a map, skipping malformed ones.
func splitPairs(entries []string) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		k, v, ok := strings.Cut(e, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
