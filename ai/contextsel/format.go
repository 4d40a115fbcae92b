package contextsel

import (
	"fmt"
	"strings"

	"github.com/reyharighy/cba/store"
)

// FormatContext renders selected turns into the numbered prompt block the
// agent system prompt embeds as chat history. Returns "" for an empty
// selection so the prompt carries no history section at all.
func FormatContext(turns []*store.Turn) string {
	if len(turns) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("You have relevant contexts to answer the current question:\n")
	for i, turn := range turns {
		fmt.Fprintf(&sb, "\nQuestion No. %d: %s\n", i+1, turn.Query)
		fmt.Fprintf(&sb, "Response Context No. %d: %s\n", i+1, turn.Summary)
	}
	return sb.String()
}
