// Package mention implements the trigger detector and the mention editor
// state machine that drives the autocomplete dropdown and edits the document.
package mention

import (
	"unicode"

	"github.com/adamavenir/whorl/internal/document"
)

// MaxQueryLength bounds the text between trigger and cursor; longer runs are
// ordinary text, not a mention in progress.
const MaxQueryLength = 50

// Match is a live trigger: the query typed after the trigger character and
// the range from the trigger to the cursor.
type Match struct {
	Query string
	Range document.Range
}

// Detector finds the trigger before the cursor.
type Detector struct {
	Trigger rune
}

// NewDetector returns a detector for trigger, defaulting to '@'.
func NewDetector(trigger rune) Detector {
	if trigger == 0 {
		trigger = '@'
	}
	return Detector{Trigger: trigger}
}

// Detect reports the trigger the cursor is in, if any. Only the nearest
// trigger character before the cursor is considered; it counts when it
// starts the text or follows whitespace.
func (d Detector) Detect(doc *document.Document, sel document.Range) (Match, bool) {
	if doc == nil || !sel.Collapsed() {
		return Match{}, false
	}
	cursor, ok := document.ResolveText(sel.Start)
	if !ok {
		return Match{}, false
	}

	text := []rune(cursor.Node.Text())
	if cursor.Offset > len(text) {
		return Match{}, false
	}
	text = text[:cursor.Offset]

	at := -1
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] != d.Trigger {
			continue
		}
		if i == 0 || unicode.IsSpace(text[i-1]) {
			at = i
		}
		break
	}
	if at == -1 {
		return Match{}, false
	}

	query := text[at+1:]
	if len(query) > MaxQueryLength {
		return Match{}, false
	}

	return Match{
		Query: string(query),
		Range: document.Range{
			Start: document.Position{Node: cursor.Node, Offset: at},
			End:   cursor,
		},
	}, true
}
