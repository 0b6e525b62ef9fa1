package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexbilevskiy/tgfolders/internal/tdlib"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize the account, asking for phone, code and password on stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}
			api := tdlib.NewTdApi(log, cfg)
			defer api.Close(ctx)

			me, err := api.Run(ctx, stdinPrompt(cmd))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", tdlib.GetUserFullname(me))

			return err
		},
	}
}

func stdinPrompt(cmd *cobra.Command) tdlib.Prompt {
	reader := bufio.NewReader(cmd.InOrStdin())

	return func(label string) (string, error) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}

		return strings.TrimSpace(line), nil
	}
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Terminate the session and remove local TDLib data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}
			api := tdlib.NewTdApi(log, cfg)
			if _, err := api.Run(ctx, nil); err != nil {
				return err
			}

			return api.LogOut(ctx)
		},
	}
}
