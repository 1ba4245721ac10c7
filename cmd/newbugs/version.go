package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/openshift/newbugs/pkg/version"
)

// NewVersionCommand prints out newbugs version information, in the plain, short, yaml or json
// form other kube tools offer.
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Report version information for newbugs",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := version.Get()
			const flag = "output"
			of, err := cmd.Flags().GetString(flag)
			if err != nil {
				return errors.Wrapf(err, "error accessing flag %s for command %s", flag, cmd.Name())
			}
			switch of {
			case "":
				fmt.Fprintf(cmd.OutOrStdout(), "newbugs built from %s\n", v.GitCommit)
			case "short":
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", v.GitCommit)
			case "yaml":
				y, err := yaml.Marshal(&v)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(y))
			case "json":
				y, err := json.MarshalIndent(&v, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(y))
			default:
				return errors.Errorf("invalid output format: %s", of)
			}

			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output format; available options are 'yaml', 'json' and 'short'")
	return cmd
}

// PrintVersion is used as a PersistentPreRun function so the version shows up in logs of every run.
// It goes to stderr to keep command output machine readable.
var PrintVersion = func(cmd *cobra.Command, args []string) {
	fmt.Fprintf(os.Stderr, "newbugs built from %s\n", version.Get().GitCommit)
}
