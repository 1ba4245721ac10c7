package main

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openshift/newbugs/pkg/flags"
	"github.com/openshift/newbugs/pkg/printer"
)

type ListFlags struct {
	BugzillaFlags *flags.BugzillaFlags
	OutputFlags   *flags.OutputFlags
	Account       string
}

func NewListFlags() *ListFlags {
	return &ListFlags{
		BugzillaFlags: flags.NewBugzillaFlags(),
		OutputFlags:   flags.NewOutputFlags(),
	}
}

func (f *ListFlags) BindFlags(fs *pflag.FlagSet) {
	f.BugzillaFlags.BindFlags(fs)
	f.OutputFlags.BindFlags(fs)
	fs.StringVar(&f.Account, "account", f.Account, "Bugzilla account (usually an email address) the bugs are assigned to")
}

func NewListCommand() *cobra.Command {
	f := NewListFlags()

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"new-bugs"},
		Short:   "List NEW bugs assigned to an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.OutputFlags.Validate(); err != nil {
				return err
			}

			client, err := f.BugzillaFlags.NewClient(f.Account)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if f.OutputFlags.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, f.OutputFlags.Timeout)
				defer cancel()
			}

			bugs, err := client.GetNewBugs(ctx)
			if err != nil {
				return errors.WithMessagef(err, "couldn't fetch new bugs for %s", f.Account)
			}

			count, err := printer.Print(cmd.OutOrStdout(), f.OutputFlags.Format, bugs)
			if err != nil {
				return err
			}
			log.Infof("%d new bugs assigned to %s", count, f.Account)
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	cmd.MarkFlagRequired("account") //nolint:errcheck

	return cmd
}
