package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/sadop/sadop/internal/config"
	"github.com/sadop/sadop/internal/logging"
)

// AskCommand returns the one-shot request command. It runs the same routing
// stack as the server without binding a listener, printing the composed
// response as JSON.
func AskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send a single request to the assistant and print the response",
		ArgsUsage: "<message>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			message := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("a message is required")
			}

			return runAsk(ctx, message)
		},
	}
}

func runAsk(ctx context.Context, message string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	stack, err := buildEngines(cfg, log)
	if err != nil {
		return err
	}
	defer stack.Close()

	response, err := stack.Assistant.Handle(ctx, message)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}
