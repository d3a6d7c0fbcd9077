package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"bluenest/internal/model"
)

// Config keeps runtime settings for the planner core and its chat surface.
type Config struct {
	TelegramToken string
	DatabaseURL   string
	// Owners is the fixed set of concrete user identities. The Common
	// pseudo-owner is never a member.
	Owners []string
	// OwnerChats maps an owner name to the Telegram user allowed to act as them.
	OwnerChats map[string]int64
	// FastPathDays is the half-width of the day-by-day paging window.
	FastPathDays int
	// RolloverMaxChainDays caps how many consecutive days a single task may be
	// carried forward in one scheduler run.
	RolloverMaxChainDays int
	// MetricsTime is the local HH:MM at which the dashboard metrics job runs.
	MetricsTime string
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken:        strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:          strings.TrimSpace(os.Getenv("BLUENEST_DB")),
		Owners:               splitList(os.Getenv("BLUENEST_OWNERS")),
		FastPathDays:         parsePositiveInt(os.Getenv("FAST_PATH_DAYS"), 7),
		RolloverMaxChainDays: parsePositiveInt(os.Getenv("ROLLOVER_MAX_CHAIN_DAYS"), 365),
		MetricsTime:          strings.TrimSpace(os.Getenv("METRICS_TIME")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "bluenest.db"
	}
	if len(cfg.Owners) == 0 {
		cfg.Owners = []string{"Ravi", "Amitha"}
	}
	if cfg.MetricsTime == "" {
		cfg.MetricsTime = "23:55"
	}

	for _, owner := range cfg.Owners {
		if strings.EqualFold(owner, model.CommonOwner) {
			return cfg, fmt.Errorf("owner list must not contain the %s pseudo-owner", model.CommonOwner)
		}
	}

	chats, err := parseOwnerChats(os.Getenv("TELEGRAM_OWNER_CHATS"), cfg.Owners)
	if err != nil {
		return cfg, err
	}
	cfg.OwnerChats = chats

	return cfg, nil
}

// IsOwner reports whether name is one of the configured concrete owners.
func (c Config) IsOwner(name string) bool {
	for _, owner := range c.Owners {
		if owner == name {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// parseOwnerChats parses "Ravi:12345,Amitha:67890" into a map. Entries for
// unknown owners are rejected so a typo does not silently drop a mapping.
func parseOwnerChats(raw string, owners []string) (map[string]int64, error) {
	chats := make(map[string]int64)
	for _, part := range splitList(raw) {
		name, id, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("invalid owner chat entry %q, expected Name:ChatID", part)
		}
		name = strings.TrimSpace(name)
		chatID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id in %q: %w", part, err)
		}
		known := false
		for _, owner := range owners {
			if owner == name {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("chat mapping for unknown owner %q", name)
		}
		chats[name] = chatID
	}
	return chats, nil
}
