package config

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Viper keys for the config file.
const (
	keyShortPeriodMins = "sessions.short_period_mins"
	keyShortBreakSecs  = "sessions.short_break_secs"
	keyLongPeriodMins  = "sessions.long_period_mins"
	keyLongBreakMins   = "sessions.long_break_mins"
	keyAutoStartNext   = "sessions.auto_start_next"
	keyNotify          = "notifications.enabled"
	keyOnBreakCmd      = "settings.on_break_cmd"
	keyPort            = "server.port"
)

// Defaults and bounds for the session durations.
const (
	defaultShortPeriodMins = 5
	defaultShortBreakSecs  = 10
	defaultLongPeriodMins  = 90
	defaultLongBreakMins   = 20
	defaultPort            = 9353

	minShortPeriodMins, maxShortPeriodMins = 1, 60
	minShortBreakSecs, maxShortBreakSecs   = 5, 60
	minLongPeriodMins, maxLongPeriodMins   = 15, 240
	minLongBreakMins, maxLongBreakMins     = 1, 60
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyShortPeriodMins, defaultShortPeriodMins)
	v.SetDefault(keyShortBreakSecs, defaultShortBreakSecs)
	v.SetDefault(keyLongPeriodMins, defaultLongPeriodMins)
	v.SetDefault(keyLongBreakMins, defaultLongBreakMins)
	v.SetDefault(keyAutoStartNext, false)
	v.SetDefault(keyNotify, true)
	v.SetDefault(keyOnBreakCmd, "")
	v.SetDefault(keyPort, defaultPort)
}

// clampInt confines n to [lo, hi], substituting fallback when n is
// zero or negative (the "field absent" rendering of viper).
func clampInt(n, lo, hi, fallback int) int {
	if n <= 0 {
		return fallback
	}

	if n < lo {
		return lo
	}

	if n > hi {
		return hi
	}

	return n
}

// Resolve reads the config file at path and returns a fully-populated
// Config. A missing file is written out with defaults on first run.
func Resolve(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	err := v.ReadInConfig()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, errReadConfig.Fmt(err)
		}

		if werr := v.WriteConfig(); werr != nil {
			return nil, errWriteConfig.Fmt(werr)
		}
	}

	shortPeriod := clampInt(
		v.GetInt(keyShortPeriodMins),
		minShortPeriodMins,
		maxShortPeriodMins,
		defaultShortPeriodMins,
	)
	shortBreak := clampInt(
		v.GetInt(keyShortBreakSecs),
		minShortBreakSecs,
		maxShortBreakSecs,
		defaultShortBreakSecs,
	)
	longPeriod := clampInt(
		v.GetInt(keyLongPeriodMins),
		minLongPeriodMins,
		maxLongPeriodMins,
		defaultLongPeriodMins,
	)
	longBreak := clampInt(
		v.GetInt(keyLongBreakMins),
		minLongBreakMins,
		maxLongBreakMins,
		defaultLongBreakMins,
	)

	port := v.GetUint(keyPort)
	if port == 0 {
		port = defaultPort
	}

	return &Config{
		ShortPeriod:   time.Duration(shortPeriod) * time.Minute,
		ShortBreak:    time.Duration(shortBreak) * time.Second,
		LongPeriod:    time.Duration(longPeriod) * time.Minute,
		LongBreak:     time.Duration(longBreak) * time.Minute,
		AutoStartNext: v.GetBool(keyAutoStartNext),
		Notify:        v.GetBool(keyNotify),
		OnBreakCmd:    v.GetString(keyOnBreakCmd),
		Port:          port,
	}, nil
}
