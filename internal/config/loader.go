package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/mechanicshop/internal/workshop"
)

// Config captures environment driven configuration values for the shop service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	Hours         workshop.BusinessHours
	SweepInterval time.Duration
	ShutdownGrace time.Duration
}

// Load parses configuration values from the current process environment.
//
// Every value has a default, so an empty environment yields a working
// configuration: business hours 09:00-18:00, a one minute overdue sweep and
// a local SQLite file.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8080,
		SQLiteDSN:     "file:mechanicshop.db?_foreign_keys=on",
		SweepInterval: time.Minute,
		ShutdownGrace: 10 * time.Second,
	}

	opening := "09:00"
	closing := "18:00"

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("MECHANICSHOP_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "MECHANICSHOP_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("MECHANICSHOP_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if value := strings.TrimSpace(os.Getenv("MECHANICSHOP_OPENING_TIME")); value != "" {
		opening = value
	}
	if value := strings.TrimSpace(os.Getenv("MECHANICSHOP_CLOSING_TIME")); value != "" {
		closing = value
	}

	openingTime, err := workshop.ParseTimeOfDay(opening)
	if err != nil {
		invalid = append(invalid, "MECHANICSHOP_OPENING_TIME")
	}
	closingTime, err := workshop.ParseTimeOfDay(closing)
	if err != nil {
		invalid = append(invalid, "MECHANICSHOP_CLOSING_TIME")
	}
	if len(invalid) == 0 {
		hours, err := workshop.NewBusinessHours(openingTime, closingTime)
		if err != nil {
			invalid = append(invalid, "MECHANICSHOP_OPENING_TIME", "MECHANICSHOP_CLOSING_TIME")
		} else {
			cfg.Hours = hours
		}
	}

	if value := strings.TrimSpace(os.Getenv("MECHANICSHOP_SWEEP_INTERVAL")); value != "" {
		interval, err := time.ParseDuration(value)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "MECHANICSHOP_SWEEP_INTERVAL")
		} else {
			cfg.SweepInterval = interval
		}
	}

	if value := strings.TrimSpace(os.Getenv("MECHANICSHOP_SHUTDOWN_GRACE")); value != "" {
		grace, err := time.ParseDuration(value)
		if err != nil || grace <= 0 {
			invalid = append(invalid, "MECHANICSHOP_SHUTDOWN_GRACE")
		} else {
			cfg.ShutdownGrace = grace
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
