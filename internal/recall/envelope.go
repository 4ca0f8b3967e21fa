package recall

import (
	"strings"

	"github.com/MycelicMemory/mycelicmemory/internal/store"
)

var xmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	`'`, "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// BuildEnvelope composes the bit-exact injection envelope from spec.md
// §6: an optional current-context block followed by one <memory>
// element per selected memory, in the order given.
func BuildEnvelope(currentContext string, selected []*store.Memory) string {
	var b strings.Builder
	b.WriteString("<relevant-memories>\n")

	if currentContext != "" {
		b.WriteString("  <current-context>\n    ")
		b.WriteString(escapeXML(currentContext))
		b.WriteString("\n  </current-context>\n")
	}

	for _, m := range selected {
		b.WriteString(`  <memory id="`)
		b.WriteString(escapeXML(m.ID))
		b.WriteString(`" tier="`)
		b.WriteString(escapeXML(m.Tier))
		b.WriteString(`" type="`)
		b.WriteString(escapeXML(m.MemoryType))
		b.WriteString(`"`)
		if m.Pinned {
			b.WriteString(` pinned="true"`)
		}
		b.WriteString(">\n    ")
		b.WriteString(escapeXML(m.Text))
		b.WriteString("\n  </memory>\n")
	}

	b.WriteString("</relevant-memories>")
	return b.String()
}
