package profiles

import (
	"fmt"
	"strings"
)

// RenderContext formats the profile as the recipient block of a system
// prompt. Output depends only on the profile's fields; empty fields are
// skipped.
func RenderContext(p *Profile) string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Recipient profile:")

	line := func(label, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "\n- %s: %s", label, value)
	}

	line("Name", p.Name)
	line("Type", string(p.Type))
	line("Relationship", p.RelationshipType)
	line("Notes", p.Notes)

	if v := p.TonePreferences; v != nil {
		var prefs []string
		if v.Formality.Valid() {
			prefs = append(prefs, string(v.Formality)+" formality")
		}
		if v.Friendliness.Valid() {
			prefs = append(prefs, string(v.Friendliness)+" friendliness")
		}
		if v.PreferredLength.Valid() {
			prefs = append(prefs, string(v.PreferredLength)+" replies")
		}
		if v.EmojiUsage.Valid() {
			prefs = append(prefs, string(v.EmojiUsage)+" emoji use")
		}
		line("Preferred tone", strings.Join(prefs, ", "))
	}

	return b.String()
}
