package answer

import (
	"strings"

	"github.com/ppiankov/sibyl/internal/model"
)

// documentSeparator joins evidence documents for generation. The blank line
// keeps document boundaries visible to the model across re-grading rounds.
const documentSeparator = "\n\n"

// Accumulator collects evidence documents over the lifetime of one request.
// It is append-only: documents are never removed, reordered or deduplicated,
// so insertion order is the chronological order of search rounds. One
// accumulator is created per loop run and never shared across requests.
type Accumulator struct {
	docs []model.EvidenceDocument
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Append adds a document to the end of the sequence
func (a *Accumulator) Append(doc model.EvidenceDocument) {
	a.docs = append(a.docs, doc)
}

// Len returns the number of accumulated documents
func (a *Accumulator) Len() int {
	return len(a.docs)
}

// Snapshot returns a copy of the full ordered sequence
func (a *Accumulator) Snapshot() []model.EvidenceDocument {
	out := make([]model.EvidenceDocument, len(a.docs))
	copy(out, a.docs)
	return out
}

// Join concatenates all document contents in insertion order, separated by
// a blank line. An empty accumulator joins to the empty string.
func (a *Accumulator) Join() string {
	if len(a.docs) == 0 {
		return ""
	}

	parts := make([]string, len(a.docs))
	for i, doc := range a.docs {
		parts[i] = doc.Content
	}
	return strings.Join(parts, documentSeparator)
}
