package wiki

// LinkRecord is one outgoing link of a page. Repeated links to the same
// target are merged into a single record.
type LinkRecord struct {
	Target           string
	Anchors          []string
	Offset           int
	Rank             int
	Occurrences      int
	InInfobox        bool
	InIntro          bool
	IsDisambiguation bool
}

// AddAnchor records an anchor text once, keeping first-seen order.
func (l *LinkRecord) AddAnchor(anchor string) {
	for _, a := range l.Anchors {
		if a == anchor {
			return
		}
	}
	l.Anchors = append(l.Anchors, anchor)
}

// PageRecord is what the analyzer emits per page and what the graph
// builder reads back from the intermediate file.
type PageRecord struct {
	Title            string
	WikiID           string
	Namespace        int
	IsRedirect       bool
	IsDisambiguation bool
	Links            []LinkRecord
}

// Geotags are the primary coordinates of a page.
type Geotags struct {
	Globe     string
	Latitude  float64
	Longitude float64
	Type      string
}
