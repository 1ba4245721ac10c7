package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openshift/newbugs/pkg/flags"
)

func NewLinkCommand() *cobra.Command {
	f := flags.NewBugzillaFlags()

	cmd := &cobra.Command{
		Use:   "link ID...",
		Short: "Print the link to one or more bugs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := f.NewClient("")
			if err != nil {
				return err
			}
			for _, id := range args {
				fmt.Fprintln(cmd.OutOrStdout(), client.BugLink(id))
			}
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
