package tone

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultPresets []byte

// Preset is a named tone shortcut that expands to a fixed vector.
type Preset struct {
	ID          string   `json:"id" yaml:"id"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
	Instruction string   `json:"instruction" yaml:"instruction"`
	Vector      Vector   `json:"vector" yaml:"vector"`
}

// Catalog is an immutable, ordered list of presets. Safe for concurrent readers.
type Catalog struct {
	presets []Preset
	index   map[string]int
}

type catalogFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadDefault parses the catalog bundled with the binary.
func LoadDefault() (*Catalog, error) {
	return Load(defaultPresets)
}

// Load parses a YAML catalog document. The first preset becomes the default.
func Load(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing tone catalog: %w", err)
	}
	if len(f.Presets) == 0 {
		return nil, fmt.Errorf("tone catalog has no presets")
	}

	c := &Catalog{
		presets: make([]Preset, 0, len(f.Presets)),
		index:   make(map[string]int, len(f.Presets)),
	}
	for _, p := range f.Presets {
		if p.ID == "" {
			return nil, fmt.Errorf("tone preset %q: missing id", p.DisplayName)
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("tone preset %q: duplicate id", p.ID)
		}
		if !p.Vector.Valid() {
			return nil, fmt.Errorf("tone preset %q: invalid vector %+v", p.ID, p.Vector)
		}
		p.Tags = appendUnique(nil, p.Tags)
		p.Vector.Tags = nil
		c.index[p.ID] = len(c.presets)
		c.presets = append(c.presets, p)
	}
	return c, nil
}

// ByID returns the preset with the given id.
func (c *Catalog) ByID(id string) (Preset, bool) {
	i, ok := c.index[id]
	if !ok {
		return Preset{}, false
	}
	return clonePreset(c.presets[i]), true
}

// Default returns the first preset in catalog order.
func (c *Catalog) Default() Preset {
	return clonePreset(c.presets[0])
}

// Presets returns all presets in catalog order.
func (c *Catalog) Presets() []Preset {
	out := make([]Preset, len(c.presets))
	for i, p := range c.presets {
		out[i] = clonePreset(p)
	}
	return out
}

// ForwardMap expands a preset into a fully populated vector. Unknown ids fall
// back to the default preset. Tags are the preset tags followed by any custom
// tags not already present, compared case-sensitively.
func (c *Catalog) ForwardMap(presetID string, customTags []string) Vector {
	i, ok := c.index[presetID]
	if !ok {
		i = 0
	}
	p := c.presets[i]

	v := p.Vector
	v.Tags = appendUnique(slices.Clone(p.Tags), customTags)
	return v
}

// ReverseMatch picks the preset whose tags overlap the given set the most.
// A preset needs at least two shared tags to qualify; ties go to the earlier
// catalog entry. Without a qualifying preset the default id is returned.
func (c *Catalog) ReverseMatch(tags []string) string {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}

	best, bestScore := -1, 1
	for i, p := range c.presets {
		score := 0
		for _, t := range p.Tags {
			if _, ok := set[t]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return c.presets[0].ID
	}
	return c.presets[best].ID
}

func appendUnique(dst []string, src []string) []string {
	for _, t := range src {
		if !slices.Contains(dst, t) {
			dst = append(dst, t)
		}
	}
	return dst
}

func clonePreset(p Preset) Preset {
	p.Tags = slices.Clone(p.Tags)
	return p
}
