package cmd

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/sadop/sadop/internal/assistant"
	"github.com/sadop/sadop/internal/config"
	"github.com/sadop/sadop/internal/executor"
	"github.com/sadop/sadop/internal/generate"
	"github.com/sadop/sadop/internal/intent"
	"github.com/sadop/sadop/internal/llm"
	"github.com/sadop/sadop/internal/logging"
	"github.com/sadop/sadop/internal/predictor"
	"github.com/sadop/sadop/internal/recommender"
	"github.com/sadop/sadop/internal/server"
)

// ServeCommand returns the HTTP server command.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the assistant HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides SADOP_SERVER_ADDR)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServe(ctx, cmd.String("addr"))
		},
	}
}

func runServe(ctx context.Context, addrOverride string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if addrOverride != "" {
		cfg.Server.Addr = addrOverride
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

	db, err := sql.Open("mysql", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	exec := executor.New(db, log)
	srv := server.New(stack.Assistant, exec, log)

	readTimeout, _ := time.ParseDuration(cfg.Server.ReadTimeout)
	writeTimeout, _ := time.ParseDuration(cfg.Server.WriteTimeout)
	shutdownTimeout, _ := time.ParseDuration(cfg.Server.ShutdownTimeout)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)

	go func() {
		log.Info("server listening", zap.String("addr", cfg.Server.Addr))
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return nil
}

// engineStack holds the request-serving engines built once at startup.
type engineStack struct {
	Assistant   *assistant.Assistant
	predictor   *predictor.Predictor
	recommender *recommender.Recommender
}

// buildEngines constructs the inference stack. The performance classifier is
// allowed to be missing (requests on that path report model-unavailable); the
// index policy is mandatory and aborts startup when absent.
func buildEngines(cfg *config.Config, log *zap.Logger) (*engineStack, error) {
	client := llm.NewClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLMTimeout(),
	})

	pred := predictor.New(cfg.Models, log)

	rec, err := recommender.New(cfg.Models, log)
	if err != nil {
		return nil, err
	}

	classifier := intent.NewClassifier(client, log)
	gen := generate.New(client, log)

	return &engineStack{
		Assistant:   assistant.New(classifier, pred, rec, gen, log),
		predictor:   pred,
		recommender: rec,
	}, nil
}

func (s *engineStack) Close() {
	_ = s.predictor.Close()
	_ = s.recommender.Close()
}
