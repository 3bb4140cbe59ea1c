package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/gccdash/auth"
	"github.com/spektr-org/gccdash/resource"
	"github.com/spektr-org/gccdash/roster"
	"github.com/spektr-org/gccdash/schema"
	"github.com/spektr-org/gccdash/server"
)

func newServeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := g.configuration()
			if err != nil {
				return err
			}
			log := conf.Logger()
			log.SetOutput(os.Stdout)

			eng, err := g.engine(conf)
			if err != nil {
				return err
			}
			axes := eng.Axes()

			store := roster.NewStore(
				resource.New(g.dataSource(conf)),
				roster.WithLogger(log),
				roster.OnLoad(func(d *roster.Dataset) {
					if err := checkAxes(axes, d); err != nil {
						log.WithError(err).Warn("axis table does not match dataset")
					}
				}),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if conf.Data.AxesStrict {
				d, err := store.Reload(ctx)
				if err != nil {
					return errors.Wrap(err, "initial dataset load")
				}
				if err := checkAxes(axes, d); err != nil {
					return err
				}
			}

			srv := server.New(server.Options{
				Configuration: conf,
				Store:         store,
				Engine:        eng,
				Authenticator: auth.NewAuthenticator(resource.New(conf.Data.CredentialsSource), log),
				Logger:        log,
			})

			grp, ctx := errgroup.WithContext(ctx)
			grp.Go(func() error { return srv.ListenAndServe(ctx) })
			if conf.Data.Watch {
				grp.Go(func() error { return watch(ctx, store, log) })
			}
			return grp.Wait()
		},
	}
}

func checkAxes(axes *schema.AxisTable, d *roster.Dataset) error {
	cfg, err := schema.Discover(d)
	if err != nil {
		return errors.Wrap(err, "discover fields")
	}
	return axes.Validate(cfg)
}

// watch follows the dataset file. A source that cannot be watched only
// disables live reloads.
func watch(ctx context.Context, store *roster.Store, log logrus.FieldLogger) error {
	err := store.Watch(ctx)
	if errors.Is(err, roster.ErrNotWatchable) {
		log.WithError(err).Warn("live reload disabled")
		return nil
	}
	return err
}
