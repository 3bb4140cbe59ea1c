package main

import (
	"context"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/spektr-org/gccdash/configuration"
	"github.com/spektr-org/gccdash/engine"
	"github.com/spektr-org/gccdash/resource"
	"github.com/spektr-org/gccdash/roster"
	"github.com/spektr-org/gccdash/schema"
)

// errReported marks a failure whose message was already written as output.
var errReported = errors.New("reported")

// globals are the flags shared by every command.
type globals struct {
	envFiles []string
	data     string
	axes     string
	format   string
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:           "gccdash",
		Short:         "GCC roster dashboard: HTTP server, importer and offline queries",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", []string{".env", ".env.local"}, "Env files to load (earlier files win)")
	cmd.PersistentFlags().StringVar(&g.data, "data", "", "Dataset file or URL (default: DATA_SOURCE)")
	cmd.PersistentFlags().StringVar(&g.axes, "axes", "", "Axis table YAML (default: AXES_PATH, else built-in)")

	cmd.AddCommand(
		newServeCmd(g),
		newImportCmd(g),
		newSearchCmd(g),
		newPivotCmd(g),
		newExportCmd(g),
		newDiscoverCmd(g),
		newHashPasswordCmd(),
	)
	return cmd
}

func addFormatFlag(cmd *cobra.Command, g *globals) {
	cmd.Flags().StringVar(&g.format, "format", "text", "Output format: json, pretty, text, csv")
}

func (g *globals) configuration() (*configuration.Configuration, error) {
	conf, err := configuration.Load(g.envFiles...)
	if err != nil {
		return nil, errors.Wrap(err, "configuration")
	}
	// Standard output is reserved for command results.
	conf.Logger().SetOutput(os.Stderr)
	return conf, nil
}

func (g *globals) dataSource(conf *configuration.Configuration) string {
	if g.data != "" {
		return g.data
	}
	return conf.Data.Source
}

func (g *globals) axisTable(conf *configuration.Configuration) (*schema.AxisTable, error) {
	path := g.axes
	if path == "" {
		path = conf.Data.AxesPath
	}
	if path == "" {
		return schema.DefaultAxes(), nil
	}
	axes, err := schema.LoadAxes(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load axes %s", path)
	}
	return axes, nil
}

func (g *globals) engine(conf *configuration.Configuration) (*engine.Engine, error) {
	axes, err := g.axisTable(conf)
	if err != nil {
		return nil, err
	}
	return engine.New(
		engine.WithAxes(axes),
		engine.WithDateFormat(conf.DateFormat()),
		engine.WithLogger(conf.Logger()),
	), nil
}

// session bundles what the offline query commands need.
type session struct {
	conf   *configuration.Configuration
	engine *engine.Engine
	ds     *roster.Dataset
}

func (g *globals) open(ctx context.Context) (*session, error) {
	conf, err := g.configuration()
	if err != nil {
		return nil, err
	}
	eng, err := g.engine(conf)
	if err != nil {
		return nil, err
	}
	ds, err := roster.Load(ctx, resource.New(g.dataSource(conf)), time.Now())
	if err != nil {
		return nil, err
	}
	return &session{conf: conf, engine: eng, ds: ds}, nil
}
