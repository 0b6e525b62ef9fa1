package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alexbilevskiy/tgfolders/internal/app"
	"github.com/alexbilevskiy/tgfolders/internal/config"
	"github.com/alexbilevskiy/tgfolders/internal/db"
	"github.com/alexbilevskiy/tgfolders/internal/folders"
	"github.com/alexbilevskiy/tgfolders/internal/tdlib"
)

type rootOptions struct {
	configPath string
	session    string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "tgfolders",
		Short:         "Sort Telegram dialogs into chat folders by rules",
		Long:          "tgfolders classifies the dialogs of a Telegram account with a rule file and merges the result into the account's chat folders. It also backs up, restores and clears folders.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config.json")
	flags.StringVar(&opts.session, "session", "", "TDLib session directory, overrides TDataDir")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newFoldersCmd(opts),
		newDialogsCmd(opts),
	)

	return rootCmd
}

func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.InitConfiguration(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.session != "" {
		cfg.SetSessionDir(o.session)
	}
	if o.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return cfg, log, nil
}

// session holds what a folder command needs: an authorized account and the
// snapshot archive.
type session struct {
	log   *slog.Logger
	api   *tdlib.TdApi
	store db.SnapshotStore
	app   *app.App
}

func openStore(ctx context.Context, cfg *config.Config) (db.SnapshotStore, folders.PeerMergePolicy, error) {
	policy, err := folders.ParsePeerMergePolicy(cfg.PeerMerge)
	if err != nil {
		return nil, 0, err
	}
	store, err := db.OpenStore(ctx, cfg)
	if err != nil {
		return nil, 0, fmt.Errorf("open snapshot storage: %w", err)
	}

	return store, policy, nil
}

// open refuses to start an authorization, run login for that.
func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	cfg, log, err := o.load(cmd)
	if err != nil {
		return nil, err
	}
	store, policy, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	api := tdlib.NewTdApi(log, cfg)
	if _, err := api.Run(ctx, nil); err != nil {
		closeStore(ctx, log, store)
		return nil, err
	}

	return &session{
		log:   log,
		api:   api,
		store: store,
		app:   app.New(log, api, store, policy),
	}, nil
}

func (s *session) Close(ctx context.Context) {
	closeStore(ctx, s.log, s.store)
	s.api.Close(ctx)
}

func closeStore(ctx context.Context, log *slog.Logger, store db.SnapshotStore) {
	if store == nil {
		return
	}
	if err := store.Close(ctx); err != nil {
		log.Warn("close snapshot storage", "error", err)
	}
}
