// Package cmd wires the CLI commands.
package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
)

var (
	version = "dev"
)

// Execute runs the root command.
func Execute() error {
	root := &cli.Command{
		Name:    "sadop",
		Usage:   "SQL performance assistant: diagnoses queries, recommends indexes, answers database questions",
		Version: version,
		Commands: []*cli.Command{
			ServeCommand(),
			AskCommand(),
		},
	}

	return root.Run(context.Background(), os.Args)
}
