package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/replywise/replywise/internal/preference"
	"github.com/replywise/replywise/internal/prompt"
	"github.com/replywise/replywise/internal/tone"
)

type promptFlags struct {
	mode    string
	message string
	context string
	preset  string
	length  string
	emoji   string
	tags    []string
}

type promptPreview struct {
	Settings preference.Settings `json:"settings" yaml:"settings"`
	PresetID string              `json:"preset_id" yaml:"preset_id"`
	Prompt   prompt.Prompt       `json:"prompt" yaml:"prompt"`
}

func newPromptCmd(opts *options) *cobra.Command {
	f := &promptFlags{}

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Preview the prompt a generation would send",
		RunE: func(cmd *cobra.Command, args []string) error {
			preview, err := buildPreview(opts.catalog, f)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), preview)
		},
	}

	cmd.Flags().StringVar(&f.mode, "mode", string(prompt.ModeAuthenticated), "authenticated or guest")
	cmd.Flags().StringVarP(&f.message, "message", "m", "", "message being replied to")
	cmd.Flags().StringVarP(&f.context, "context", "c", "", "additional context")
	cmd.Flags().StringVar(&f.preset, "preset", "", "tone preset id (default: catalog default)")
	cmd.Flags().StringVar(&f.length, "length", "", "override length: short, medium or long")
	cmd.Flags().StringVar(&f.emoji, "emoji", "", "override emoji: on or off")
	cmd.Flags().StringSliceVar(&f.tags, "tags", nil, "extra tone tags")
	return cmd
}

func buildPreview(catalog *tone.Catalog, f *promptFlags) (*promptPreview, error) {
	mode := prompt.Mode(f.mode)
	if mode != prompt.ModeAuthenticated && mode != prompt.ModeGuest {
		return nil, errInvalidFlag("mode", f.mode)
	}

	st := preference.State{
		PresetID:      catalog.Default().ID,
		DefaultLength: tone.LengthMedium,
	}
	if f.preset != "" && f.preset != preference.MatchProfile {
		if _, ok := catalog.ByID(f.preset); !ok {
			return nil, errInvalidFlag("preset", f.preset)
		}
		st = st.SelectPreset(f.preset)
	}
	if f.length != "" {
		l := tone.Length(f.length)
		if !l.Valid() {
			return nil, errInvalidFlag("length", f.length)
		}
		st = st.SetLength(l)
	}
	switch f.emoji {
	case "":
	case "on":
		st = st.SetEmoji(true)
	case "off":
		st = st.SetEmoji(false)
	default:
		return nil, errInvalidFlag("emoji", f.emoji)
	}

	resolver := preference.NewResolver(catalog)
	settings := resolver.Resolve(st)
	style := resolver.Style(st, f.tags)

	p, err := prompt.Build(prompt.Input{
		Mode:              mode,
		Message:           f.message,
		AdditionalContext: f.context,
		Length:            settings.Length,
		Emoji:             settings.Emoji,
		ToneInstruction:   style.Instruction,
		Tags:              style.Tags,
	})
	if err != nil {
		return nil, err
	}

	return &promptPreview{Settings: settings, PresetID: style.PresetID, Prompt: p}, nil
}

func errInvalidFlag(name, value string) error {
	return fmt.Errorf("invalid --%s value %q", name, value)
}
