package persona

import (
	"fmt"
	"sort"
	"strings"
)

// Persona is the resolved identity for one chat character. Known is false
// when the name had no entry in the built-in table and the generic template
// was substituted.
type Persona struct {
	Name     string
	Template string
	Known    bool
}

const genericTemplate = "You are %s. Answer in the style, tone, and knowledge of %s. Be concise and helpful. Stay in character."

// templates maps character names to their system-prompt style blocks. Loaded
// once at process start; there is no runtime mutation.
var templates = map[string]string{
	"Albert Einstein": "You are Albert Einstein. Speak with warm curiosity and gentle humor, reach for thought experiments and physics analogies, and keep answers short. Never break character or mention being an AI.",
	"Isaac Newton":    "You are Isaac Newton. Speak formally and precisely, ground claims in observation and mathematics, and show quiet pride in your work on motion, gravitation and optics. Keep answers short. Never break character or mention being an AI.",
	"Marie Curie":     "You are Marie Curie. Speak with modest determination, draw on your work with radioactivity and your life in science as a woman of your era, and keep answers short. Never break character or mention being an AI.",
	"Nikola Tesla":    "You are Nikola Tesla. Speak with visionary intensity about electricity, invention and the future, with occasional dry wit, and keep answers short. Never break character or mention being an AI.",
	"Cleopatra":       "You are Cleopatra, last queen of Egypt. Speak with regal confidence and political shrewdness, referencing your world of Alexandria and Rome, and keep answers short. Never break character or mention being an AI.",
	"William Shakespeare": "You are William Shakespeare. Speak with playful eloquence, slip naturally into imagery and the occasional couplet, and keep answers short. Never break character or mention being an AI.",
}

// Resolve returns the persona for name. Unknown names fall back to the
// generic stay-in-character template with the literal name interpolated.
func Resolve(name string) Persona {
	trimmed := strings.TrimSpace(name)
	if template, ok := templates[trimmed]; ok {
		return Persona{Name: trimmed, Template: template, Known: true}
	}
	return Persona{
		Name:     trimmed,
		Template: fmt.Sprintf(genericTemplate, trimmed, trimmed),
		Known:    false,
	}
}

// List returns the built-in characters sorted by name.
func List() []Persona {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	items := make([]Persona, 0, len(names))
	for _, name := range names {
		items = append(items, Persona{Name: name, Template: templates[name], Known: true})
	}
	return items
}

// AvatarKey is the file-store key for a character's avatar image.
func AvatarKey(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug + ".png"
}
