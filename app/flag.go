package app

import "github.com/urfave/cli/v2"

var (
	portFlag = &cli.UintFlag{
		Name:  "port",
		Usage: "Specify the port for the control API (default: 9353)",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable the system notifications that announce breaks",
	}

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}

	daysFlag = &cli.UintFlag{
		Name:  "days",
		Usage: "Number of days to include in the statistics report (max: 30)",
		Value: 7,
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the output in JSON format",
	}
)
