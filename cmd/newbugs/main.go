package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// quietCommands skip the version banner so their output can be piped.
var quietCommands = map[string]bool{
	"version": true,
	"link":    true,
}

// NewRootCommand represents the base command when called without any subcommands.
func NewRootCommand() *cobra.Command {
	logLevel := "info"

	cmd := &cobra.Command{
		Use:   "newbugs",
		Short: "List newly filed bugs assigned to a Bugzilla account",
		Long: `newbugs queries a Bugzilla server's REST API for bugs in status NEW that are
assigned to an account, and prints them with a link to each bug.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !quietCommands[cmd.Name()] {
				PrintVersion(cmd, args)
			}
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				log.WithError(err).Fatal("cannot parse log-level")
			}
			log.SetLevel(level)
			log.Debug("debug logging enabled")
		},
	}

	cmd.AddCommand(
		NewListCommand(),
		NewLinkCommand(),
		NewServeCommand(),
		NewVersionCommand(),
	)

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (trace,debug,info,warn,error) (default info)")
	return cmd
}

func main() {
	// Add some millisecond precision to log timestamps, useful for debugging slow servers.
	formatter := new(log.TextFormatter)
	formatter.TimestampFormat = "2006-01-02T15:04:05.999Z07:00"
	formatter.FullTimestamp = true
	log.SetFormatter(formatter)

	err := NewRootCommand().Execute()
	if err != nil {
		log.WithError(err).Fatal("could not execute root command")
	}
}
