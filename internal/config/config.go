package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrDiscordTokenNotSet = errors.New("DISCORD_TOKEN is not set")

type Config struct {
	DiscordToken string

	// CommandPrefix is the character(s) commands start with.
	CommandPrefix string

	// IdleTimeout is how long a session may sit idle before the sweeper
	// evicts it and the bot leaves voice.
	IdleTimeout time.Duration

	// StopClearsQueue controls whether the stop command drops pending
	// tracks or keeps them for a later play.
	StopClearsQueue bool

	// CachePath is the SQLite file backing the track metadata cache.
	CachePath string
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine, real deployments use the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] no .env file found, using environment variables")
	}

	discordToken := os.Getenv("DISCORD_TOKEN")
	if discordToken == "" {
		return nil, ErrDiscordTokenNotSet
	}

	return &Config{
		DiscordToken:    discordToken,
		CommandPrefix:   envString("COMMAND_PREFIX", "!"),
		IdleTimeout:     time.Duration(envInt("IDLE_TIMEOUT_MINUTES", 5)) * time.Minute,
		StopClearsQueue: envBool("STOP_CLEARS_QUEUE", true),
		CachePath:       envString("CACHE_PATH", "minuet.db"),
	}, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[Config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[Config] invalid %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}
