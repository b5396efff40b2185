package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPresetsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "presets [id]",
		Short: "List tone presets, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return opts.print(cmd.OutOrStdout(), opts.catalog.Presets())
			}
			p, ok := opts.catalog.ByID(args[0])
			if !ok {
				return fmt.Errorf("unknown preset %q", args[0])
			}
			return opts.print(cmd.OutOrStdout(), p)
		},
	}
}

type matchResult struct {
	Tags     []string `json:"tags" yaml:"tags"`
	PresetID string   `json:"preset_id" yaml:"preset_id"`
}

func newMatchCmd(opts *options) *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Find the preset closest to a set of tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.print(cmd.OutOrStdout(), matchResult{
				Tags:     tags,
				PresetID: opts.catalog.ReverseMatch(tags),
			})
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tags", nil, "comma-separated tone tags")
	_ = cmd.MarkFlagRequired("tags")
	return cmd
}
