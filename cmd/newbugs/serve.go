package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openshift/newbugs/pkg/flags"
	"github.com/openshift/newbugs/pkg/server"
)

type ServeFlags struct {
	BugzillaFlags *flags.BugzillaFlags
	APIFlags      *flags.APIFlags
}

func NewServeFlags() *ServeFlags {
	return &ServeFlags{
		BugzillaFlags: flags.NewBugzillaFlags(),
		APIFlags:      flags.NewAPIFlags(),
	}
}

func (f *ServeFlags) BindFlags(fs *pflag.FlagSet) {
	f.BugzillaFlags.BindFlags(fs)
	f.APIFlags.BindFlags(fs)
}

func NewServeCommand() *cobra.Command {
	f := NewServeFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve new bug lookups over a JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := server.New(f.APIFlags.ListenAddr, f.BugzillaFlags.NewClient, prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}

			if f.APIFlags.MetricsAddr != "" {
				// Serve our metrics endpoint for prometheus to scrape
				go func() {
					http.Handle("/metrics", promhttp.Handler())
					err := http.ListenAndServe(f.APIFlags.MetricsAddr, nil) //nolint
					if err != nil {
						log.WithError(err).Error("metrics endpoint stopped")
					}
				}()
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx)
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
