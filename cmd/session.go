package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/pipeboard/internal/auth"
	"github.com/spigell/pipeboard/internal/careers"
	"github.com/spigell/pipeboard/internal/event"
	"github.com/spigell/pipeboard/internal/kanban"
	"github.com/spigell/pipeboard/internal/logger"
	"github.com/spigell/pipeboard/internal/render"
)

// session is what the board commands share: config, logger, API client and
// the board of the configured pipeline.
type session struct {
	config *Config
	logger *zap.Logger
	client *careers.Client
	board  *kanban.PipelineBoard

	pipelineID string
	jobID      string
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// newSession builds the API client and the board. The active pipeline is
// asked for when no pipeline id is configured.
func newSession(ctx context.Context) *session {
	l := newLogger()

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	l.Debug("starting", zap.String("version", version), zap.String("api_url", config.APIURL))

	creds, err := resolveCredentials(config, l)
	if err != nil {
		l.Fatal(
			"loading api token",
			zap.Error(err),
			zap.String("hint", "set PIPEBOARD_TOKEN or PIPEBOARD_TOKEN_FILE, or the 'token'/'token-file' keys in the configuration file"),
		)
	}

	client := careers.New(logger.Component(l, logger.ComponentCareers), creds)
	client.APIURL = config.APIURL
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	if config.Timeout > 0 {
		client.HTTPClient.Timeout = config.Timeout
	}

	s := &session{
		config:     config,
		logger:     l,
		client:     client,
		pipelineID: strings.TrimSpace(config.Pipeline.ID),
		jobID:      strings.TrimSpace(config.Pipeline.JobID),
	}

	if s.pipelineID == "" {
		pipeline, err := client.ActivePipeline(ctx)
		if err != nil {
			l.Fatal("getting the active pipeline", zap.Error(err))
		}
		s.pipelineID = pipeline.ID
		l.Info("using the active pipeline", zap.String(logger.FieldPipeline, pipeline.ID), zap.String("name", pipeline.Name))
	}

	s.board = kanban.New(client,
		kanban.WithLogger(logger.Component(l, logger.ComponentBoard)),
		kanban.WithReloadTimeout(config.ReloadTimeout),
	)

	s.board.Bus().SubscribeAll(func(e event.Event) {
		l.Info(event.Describe(e), zap.Stringer("event", e.Kind()))
	})

	return s
}

func resolveCredentials(config *Config, l *zap.Logger) (auth.Credentials, error) {
	creds, err := auth.NewCredentials(auth.Source{
		Name:  "api token",
		Value: config.Token,
		File:  config.TokenFile,
	})
	if errors.Is(err, auth.ErrNotConfigured) {
		l.Warn("no api token configured, sending unauthenticated requests")
		return auth.Credentials{}, nil
	}

	return creds, err
}

func (s *session) load(ctx context.Context) *kanban.Board {
	b, err := s.board.Load(ctx, s.pipelineID, s.jobID)
	if err != nil {
		s.logger.Fatal("loading the board", zap.Error(err))
	}
	return b
}

func (s *session) print(w io.Writer, b *kanban.Board) {
	fmt.Fprintln(w, render.Board(b, s.board.CardState))
	if s.board.Stale() {
		fmt.Fprintln(w, "board may be out of date: the last reload failed")
	}
}
