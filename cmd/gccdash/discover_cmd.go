package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/spektr-org/gccdash/schema"
)

type discoverOutput struct {
	Schema   *schema.Config       `json:"schema"`
	Axes     []schema.Axis        `json:"axes"`
	Problems []schema.AxisProblem `json:"problems,omitempty"`
}

func newDiscoverCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Describe the dataset's fields and check the axis table against them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			cfg, err := schema.Discover(s.ds)
			if err != nil {
				return errors.Wrap(err, "discover")
			}

			out := discoverOutput{Schema: cfg, Axes: s.engine.Axes().Axes}
			var verr *schema.ValidationError
			if err := s.engine.Axes().Validate(cfg); errors.As(err, &verr) {
				out.Problems = verr.Problems
			}

			w := cmd.OutOrStdout()
			switch g.format {
			case "json", "pretty":
				return writeJSON(w, out, g.format)
			case "text":
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "%d records, %d fields\n\n", cfg.Records, len(cfg.Fields))
				fmt.Fprintln(tw, "FIELD\tTYPE\tPRESENT\tEMPTY\tDISTINCT\tGROUPABLE")
				for _, f := range cfg.Fields {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%t\n", f.Name, f.Type, f.Present, f.Empty, f.Distinct, f.Groupable)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				for _, p := range out.Problems {
					fmt.Fprintf(w, "axis %s: field %q not in dataset\n", p.Axis, p.Field)
				}
				return nil
			default:
				return errors.Errorf("unknown format %q", g.format)
			}
		},
	}
	addFormatFlag(cmd, g)
	return cmd
}
