package main

import (
	"github.com/spf13/cobra"
)

func newDialogsCmd(opts *rootOptions) *cobra.Command {
	dialogsCmd := &cobra.Command{
		Use:   "dialogs",
		Short: "Sort dialogs into folders",
	}
	dialogsCmd.AddCommand(newDialogsAssignCmd(opts))

	return dialogsCmd
}

func newDialogsAssignCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "assign <rules.json>",
		Short: "Evaluate the rule file against every dialog and merge the result into folders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			return s.app.Assign(cmd.Context(), args[0], dryRun, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the folders instead of sending them")

	return cmd
}
