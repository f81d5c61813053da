package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "applicant",
		Usage: "Prepare and submit KrushiSetu subsidy applications",
		// document numbers may contain commas
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Portal API base URL (overrides PORTAL_BASE_URL)",
			},
			&cli.StringFlag{
				Name:    "applicant",
				Aliases: []string{"a"},
				Usage:   "Applicant id (overrides PORTAL_APPLICANT_ID)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			subsidiesCommand,
			requirementsCommand,
			documentsCommand,
			submitCommand,
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
