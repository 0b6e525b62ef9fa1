package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/alexbilevskiy/tgfolders/internal/app"
)

func newFoldersCmd(opts *rootOptions) *cobra.Command {
	foldersCmd := &cobra.Command{
		Use:   "folders",
		Short: "Back up, restore and clear chat folders",
	}
	foldersCmd.AddCommand(
		newFoldersBackupCmd(opts),
		newFoldersRestoreCmd(opts),
		newFoldersClearCmd(opts),
		newFoldersHistoryCmd(opts),
	)

	return foldersCmd
}

func newFoldersBackupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <file>",
		Short: "Save the current folders to a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			return s.app.Backup(cmd.Context(), args[0])
		},
	}
}

func newFoldersRestoreCmd(opts *rootOptions) *cobra.Command {
	var snapshotRef string
	cmd := &cobra.Command{
		Use:   "restore [file]",
		Short: "Merge folders from a snapshot file or an archived snapshot into the account",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return err
			}
			if (len(args) == 1) == (snapshotRef != "") {
				return errors.New("pass either a snapshot file or --snapshot")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			return s.app.Restore(cmd.Context(), path, snapshotRef)
		},
	}
	cmd.Flags().StringVar(&snapshotRef, "snapshot", "", "archived snapshot id, or \""+app.LatestSnapshot+"\"")

	return cmd
}

func newFoldersClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every folder except the default one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			return s.app.Clear(cmd.Context())
		},
	}
}

func newFoldersHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived folder snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}
			store, policy, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore(ctx, log, store)

			return app.New(log, nil, store, policy).History(ctx, cmd.OutOrStdout(), limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of snapshots to show")

	return cmd
}
