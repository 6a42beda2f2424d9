// Package app assembles the respite command-line interface.
package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/halidom/respite/config"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the respite app instance.
func Get() *cli.App {
	respiteApp := &cli.App{
		Name: "respite",
		Usage: `
		Respite is a focus timer that runs in the background and interrupts
		long stretches of work with randomized short breaks and a scheduled
		long break. Run without a command to start the daemon.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Print the state of the current focus session",
				Action: statusAction,
				Flags:  []cli.Flag{portFlag, jsonFlag},
			},
			{
				Name: "stats",
				Usage: `
				Report focus time and break counts. Defaults to a reporting
				period of 7 days`,
				Action: statsAction,
				Flags:  []cli.Flag{portFlag, daysFlag, jsonFlag},
			},
		},
		Flags: []cli.Flag{
			portFlag,
			noColorFlag,
			disableNotificationFlag,
			debugFlag,
		},
		Action: defaultAction,
		Before: beforeAction,
		After:  afterAction,
	}

	return respiteApp
}
