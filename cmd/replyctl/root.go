package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/replywise/replywise/internal/tone"
)

type options struct {
	output  string
	catalog *tone.Catalog
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "replyctl",
		Short:         "Inspect tone presets and preview reply prompts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "yaml" && opts.output != "json" {
				return fmt.Errorf("unsupported output format %q (use yaml or json)", opts.output)
			}
			catalog, err := tone.LoadDefault()
			if err != nil {
				return fmt.Errorf("loading presets: %w", err)
			}
			opts.catalog = catalog
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "yaml", "output format: yaml or json")

	cmd.AddCommand(
		newPresetsCmd(opts),
		newMatchCmd(opts),
		newPromptCmd(opts),
	)
	return cmd
}

func (o *options) print(w io.Writer, v any) error {
	if o.output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}
