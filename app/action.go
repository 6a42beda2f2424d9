package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/halidom/respite/bus"
	"github.com/halidom/respite/config"
	"github.com/halidom/respite/engine"
	"github.com/halidom/respite/internal/log"
	"github.com/halidom/respite/internal/session"
	"github.com/halidom/respite/notify"
	"github.com/halidom/respite/stats"
	"github.com/halidom/respite/store"
)

const (
	envNoColor        = "NO_COLOR"
	envRespiteNoColor = "RESPITE_NO_COLOR"
)

const shutdownTimeout = 5 * time.Second

// initConfig resolves the config file and applies command-line
// overrides on top.
func initConfig(ctx *cli.Context) (*config.Config, error) {
	config.InitializePaths()

	cfg, err := config.Resolve(config.ConfigFilePath())
	if err != nil {
		return nil, err
	}

	if port := ctx.Uint("port"); port != 0 {
		cfg.Port = port
	}

	if ctx.Bool("disable-notification") {
		cfg.Notify = false
	}

	return cfg, nil
}

// defaultAction runs the daemon: engine, alarm scheduling, tick loop
// and the local control API, until an interrupt arrives.
func defaultAction(ctx *cli.Context) error {
	cfg, err := initConfig(ctx)
	if err != nil {
		return err
	}

	log.Init(config.LogFilePath(), ctx.Bool("debug"))

	// bbolt holds an exclusive lock, so a second daemon fails fast here
	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}

	defer func() {
		_ = db.Close()
	}()

	agg := stats.New(db)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Notify {
		notifier = notify.Desktop{}
	}

	eng := engine.New(cfg, db, agg, notifier)
	eng.Start()

	defer eng.Stop()

	srv := bus.New(cfg, eng, agg)

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- srv.Start()
	}()

	sigCtx, stop := signal.NotifyContext(
		ctx.Context,
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	pterm.Info.Printfln(
		"respite is running (port %d), press Ctrl+C to stop",
		cfg.Port,
	)

	select {
	case err = <-serveErr:
		return err
	case <-sigCtx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// apiGet fetches a control API endpoint from a running daemon.
func apiGet(port uint, path string, out any) error {
	c := http.Client{Timeout: 2 * time.Second}

	resp, err := c.Get(fmt.Sprintf("http://127.0.0.1:%d%s", port, path))
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// statusAction prints the state of the current session as reported by
// the running daemon.
func statusAction(ctx *cli.Context) error {
	cfg, err := initConfig(ctx)
	if err != nil {
		return err
	}

	var sess session.Session

	err = apiGet(cfg.Port, "/api/session", &sess)
	if err != nil {
		pterm.Info.Println("respite is not running")
		return nil
	}

	if ctx.Bool("json") {
		b, err := json.Marshal(&sess)
		if err != nil {
			return err
		}

		fmt.Println(string(b))

		return nil
	}

	printStatus(&sess)

	return nil
}

type statsReport struct {
	Today store.Bucket    `json:"today"`
	Week  store.Bucket    `json:"week"`
	Days  []stats.DayStat `json:"days"`
}

// statsAction reports focus statistics. It asks the daemon first and
// falls back to reading the store directly when no daemon is running
// (the database lock guarantees at most one of the two holds it).
func statsAction(ctx *cli.Context) error {
	cfg, err := initConfig(ctx)
	if err != nil {
		return err
	}

	days := int(ctx.Uint("days"))
	if days < 1 || days > 30 {
		days = 7
	}

	var report statsReport

	err = apiGet(
		cfg.Port,
		fmt.Sprintf("/api/statistics?days=%d", days),
		&report,
	)
	if err != nil {
		report, err = offlineStats(days)
		if err != nil {
			return err
		}
	}

	if ctx.Bool("json") {
		b, err := json.Marshal(&report)
		if err != nil {
			return err
		}

		fmt.Println(string(b))

		return nil
	}

	printStats(&report)

	return nil
}

func offlineStats(days int) (statsReport, error) {
	var report statsReport

	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return report, err
	}

	defer func() {
		_ = db.Close()
	}()

	agg := stats.New(db)

	today, err := agg.Today()
	if err != nil {
		return report, err
	}

	week, err := agg.ThisWeek()
	if err != nil {
		return report, err
	}

	dayStats, err := agg.LastNDays(days)
	if err != nil {
		return report, err
	}

	report.Today = *today
	report.Week = *week
	report.Days = dayStats

	return report, nil
}

func beforeAction(ctx *cli.Context) error {
	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if RESPITE_NO_COLOR is set
	if _, exists := os.LookupEnv(envRespiteNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}

func afterAction(ctx *cli.Context) error {
	slog.InfoContext(ctx.Context, "exiting respite")

	return nil
}

