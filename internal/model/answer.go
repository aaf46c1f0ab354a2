package model

// EvidenceDocument is one unit of retrieved text contributing to answer
// generation. One document is produced per successful web-search round
// (all snippets of the round joined together).
type EvidenceDocument struct {
	Content string   `json:"content"`           // Joined snippet text
	Sources []string `json:"sources,omitempty"` // URLs the snippets came from
}

// SearchResult is a single ranked snippet returned by the web search tool.
type SearchResult struct {
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content"`
}

// AnswerSource records which path produced the final generation.
type AnswerSource string

const (
	SourceCorpus AnswerSource = "corpus" // context store answer accepted as-is
	SourceWeb    AnswerSource = "web"    // regenerated from web evidence
	SourceNone   AnswerSource = "none"   // degraded: no results or search failure
)

// Answer is the terminal output of one escalation loop run.
type Answer struct {
	Question   string             `json:"question"`
	Documents  []EvidenceDocument `json:"documents"`
	Generation string             `json:"generation"`
	Source     AnswerSource       `json:"source"`
	Rounds     int                `json:"rounds"` // escalation rounds performed (0 = corpus answer accepted)
}
