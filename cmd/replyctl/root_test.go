package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/replywise/replywise/internal/prompt"
	"github.com/replywise/replywise/internal/tone"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPresets_YAML(t *testing.T) {
	out, err := run(t, "presets")
	require.NoError(t, err)

	var presets []tone.Preset
	require.NoError(t, yaml.Unmarshal([]byte(out), &presets))
	require.NotEmpty(t, presets)
	assert.Equal(t, "professional", presets[0].ID)
}

func TestPresets_SingleJSON(t *testing.T) {
	out, err := run(t, "presets", "casual", "-o", "json")
	require.NoError(t, err)

	var p tone.Preset
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "casual", p.ID)
	assert.Equal(t, tone.LengthShort, p.Vector.PreferredLength)
}

func TestPresets_Unknown(t *testing.T) {
	_, err := run(t, "presets", "sarcastic")
	assert.ErrorContains(t, err, "unknown preset")
}

func TestMatch(t *testing.T) {
	out, err := run(t, "match", "--tags", "diplomatic,polite", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":["diplomatic","polite"],"preset_id":"diplomatic"}`, out)
}

func TestUnsupportedOutput(t *testing.T) {
	_, err := run(t, "presets", "-o", "xml")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestPrompt(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
		check   func(t *testing.T, p promptPreview)
	}{
		{
			name: "preset drives settings",
			args: []string{"--preset", "casual", "-m", "Want to grab lunch?"},
			check: func(t *testing.T, p promptPreview) {
				assert.Equal(t, "casual", p.PresetID)
				assert.Equal(t, tone.LengthShort, p.Settings.Length)
				assert.True(t, p.Settings.Emoji)
				assert.Equal(t, prompt.MaxTokens(tone.LengthShort), p.Prompt.MaxTokens)
			},
		},
		{
			name: "manual overrides",
			args: []string{"--preset", "casual", "--length", "long", "--emoji", "off", "-c", "Team offsite"},
			check: func(t *testing.T, p promptPreview) {
				assert.Equal(t, tone.LengthLong, p.Settings.Length)
				assert.False(t, p.Settings.Emoji)
				assert.Contains(t, p.Prompt.System, prompt.EmojiForbiddenDirective)
			},
		},
		{
			name:    "missing input",
			args:    []string{"--preset", "casual"},
			wantErr: prompt.ErrMessageOrContextRequired.Error(),
		},
		{
			name:    "bad length",
			args:    []string{"-m", "hi", "--length", "huge"},
			wantErr: "invalid --length",
		},
		{
			name:    "bad mode",
			args:    []string{"-m", "hi", "--mode", "admin"},
			wantErr: "invalid --mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"prompt", "-o", "json"}, tt.args...)...)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			var p promptPreview
			require.NoError(t, json.Unmarshal([]byte(out), &p))
			tt.check(t, p)
		})
	}
}
