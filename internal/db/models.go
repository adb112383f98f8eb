package db

// Labels and relationship types of the imported graph
const (
	LabelArticle  = "Article"
	LabelCategory = "Category"
	LabelRedirect = "Redirect"
	LabelDisambig = "Disambig"

	RelLink       = "link"
	RelRedirectTo = "redirectTo"
	RelBelongTo   = "belongTo"
	RelChildOf    = "childOf"
	RelCrosslink  = "crosslink"
)

// Properties are the key/value attributes of a node or edge, stored as JSON
type Properties map[string]any

// Node represents a row in the nodes table with its labels
type Node struct {
	ID         int64      `json:"id"`
	Labels     []string   `json:"labels"`
	Properties Properties `json:"properties"`
}

// String returns a string property, or "" when absent
func (n Node) String(key string) string {
	s, _ := n.Properties[key].(string)
	return s
}

// Int returns a numeric property, or 0 when absent
func (n Node) Int(key string) int64 {
	switch v := n.Properties[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// HasLabel reports whether the node carries label
func (n Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Edge represents a row in the edges table
type Edge struct {
	ID         int64      `json:"id"`
	SourceID   int64      `json:"source_id"`
	TargetID   int64      `json:"target_id"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
}

// ImportRun summarizes the import of one language
type ImportRun struct {
	RunID      string `json:"run_id"`
	Lang       string `json:"lang"`
	Nodes      int64  `json:"nodes"`
	Edges      int64  `json:"edges"`
	StartedAt  int64  `json:"started_at"` // Unix millis
	DurationMs int64  `json:"duration_ms"`
}
