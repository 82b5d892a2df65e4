package bootstrap

import (
	"fmt"
	"net/http"
	"os"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	feedinadapter "feedvault/internal/modules/feed/adapter/in"
	feedoutadapter "feedvault/internal/modules/feed/adapter/out"
	feedout "feedvault/internal/modules/feed/port/out"
	feedservice "feedvault/internal/modules/feed/service"
	feedusecase "feedvault/internal/modules/feed/usecase"
	mediaoutadapter "feedvault/internal/modules/media/adapter/out"
	mediaservice "feedvault/internal/modules/media/service"
	mediausecase "feedvault/internal/modules/media/usecase"
	"feedvault/internal/platform/clock"
	"feedvault/internal/platform/config"
	"feedvault/internal/platform/logging"
	"feedvault/internal/ui/prompt"
)

type App struct {
	FeedCLI feedinadapter.CLIHandler
	Logger  hclog.Logger
	store   *feedoutadapter.SQLiteStore
}

type Options struct {
	Logger   hclog.Logger
	Prompter feedout.CredentialPrompter
	Clock    clock.Clock
}

func New(cfg config.Config, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = logging.New(cfg.LogLevel, os.Stderr)
	}
	prompter := opts.Prompter
	if prompter == nil {
		prompter = prompt.NewTerminal(os.Stdin, os.Stderr)
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}

	store, err := feedoutadapter.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new activity store: %w", err)
	}

	feedLog := log.Named("feed")
	api, err := feedoutadapter.NewHTTPFeedClient(feedoutadapter.APIClientConfig{
		BaseURL:       cfg.API.BaseURL,
		ClientVersion: cfg.API.ClientVersion,
		UserAgent:     cfg.API.UserAgent,
		Timeout:       time.Duration(cfg.API.TimeoutSeconds) * time.Second,
	}, prompter, feedLog.Named("api"))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("new api client: %w", err)
	}

	mediaLog := log.Named("media")
	mediaUC := mediausecase.NewInteractor(mediaservice.NewMediaService(
		mediaoutadapter.NewHTTPDownloader(&http.Client{}, mediaLog),
		mediaoutadapter.NewExiftoolWriter(cfg.Media.ExiftoolPath, mediaLog),
		mediaLog,
		mediaservice.NewImageStrategy(mediaoutadapter.NewTZFResolver()),
		mediaservice.NewVideoStrategy(),
	))

	feedUC := feedusecase.NewInteractor(
		feedservice.NewMetadataService(api, store, store, clk, feedLog),
		feedservice.NewMediaSyncService(store, feedLog, feedoutadapter.NewMediaBridges(mediaUC)...),
	)

	return &App{
		FeedCLI: feedinadapter.NewCLIHandler(feedUC),
		Logger:  log,
		store:   store,
	}, nil
}

func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
