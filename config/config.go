// Package config resolves the respite settings from the config file
// into a fully-populated struct before the engine ever reads them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
)

const Version = "v0.3.0"

// Config holds the resolved program settings. Every field is
// populated: missing or out-of-range values in the config file fall
// back to the documented defaults, so consumers never validate.
type Config struct {
	ShortPeriod   time.Duration `json:"short_period"`
	ShortBreak    time.Duration `json:"short_break"`
	LongPeriod    time.Duration `json:"long_period"`
	LongBreak     time.Duration `json:"long_break"`
	AutoStartNext bool          `json:"auto_start_next"`
	Notify        bool          `json:"notify"`
	OnBreakCmd    string        `json:"on_break_cmd"`
	Port          uint          `json:"port"`
}

var (
	configDir      = "respite"
	configFileName = "config.yml"
	dbFileName     = "respite.db"
	logFileName    = "respite.log"
	dbFilePath     string
	configFilePath string
	logFilePath    string
)

func Dir() string {
	return configDir
}

func DBFilePath() string {
	return dbFilePath
}

func LogFilePath() string {
	return logFilePath
}

func ConfigFilePath() string {
	return configFilePath
}

// InitializePaths computes the config, database and log file paths.
// RESPITE_ENV suffixes the file names so test and development runs
// never touch the real data.
func InitializePaths() {
	respiteEnv := strings.TrimSpace(os.Getenv("RESPITE_ENV"))
	if respiteEnv != "" {
		configFileName = fmt.Sprintf("config_%s.yml", respiteEnv)
		dbFileName = fmt.Sprintf("respite_%s.db", respiteEnv)
		logFileName = fmt.Sprintf("respite_%s.log", respiteEnv)
	}

	var err error

	relPath := filepath.Join(configDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)

	logFilePath = filepath.Join(dataDir, "log", logFileName)
}
