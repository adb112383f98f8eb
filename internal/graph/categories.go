package graph

import (
	"sort"

	"graphipedia/dataimport/internal/db"
)

// LanguageCounts breaks the nodes of one language down by label
type LanguageCounts struct {
	Lang           string `json:"lang"`
	Articles       int    `json:"articles"`
	Categories     int    `json:"categories"`
	Redirects      int    `json:"redirects"`
	Disambiguation int    `json:"disambiguation"`
	// articles, redirects excluded, that belong to no category
	Uncategorized int `json:"uncategorized"`
	// categories without a parent category
	RootCategories int `json:"root_categories"`
}

// CategoryReport describes the category tree of every language
type CategoryReport struct {
	Languages []LanguageCounts `json:"languages"`
	EdgeTypes map[string]int   `json:"edge_types"`
}

// ComputeCategories counts labels and category membership per language
func ComputeCategories(snap *GraphSnapshot) *CategoryReport {
	belongs := make(map[int64]bool)
	hasParent := make(map[int64]bool)
	edgeTypes := make(map[string]int)
	for _, e := range snap.Edges {
		edgeTypes[e.Type]++
		switch e.Type {
		case db.RelBelongTo:
			belongs[e.Source] = true
		case db.RelChildOf:
			hasParent[e.Source] = true
		}
	}

	byLang := make(map[string]*LanguageCounts)
	for _, id := range snap.NodeIDs() {
		n := snap.Nodes[id]
		c, ok := byLang[n.Lang]
		if !ok {
			c = &LanguageCounts{Lang: n.Lang}
			byLang[n.Lang] = c
		}
		switch {
		case n.HasLabel(db.LabelCategory):
			c.Categories++
			if !hasParent[id] {
				c.RootCategories++
			}
		case n.HasLabel(db.LabelArticle):
			c.Articles++
			if n.HasLabel(db.LabelRedirect) {
				c.Redirects++
			} else if !belongs[id] {
				c.Uncategorized++
			}
			if n.HasLabel(db.LabelDisambig) {
				c.Disambiguation++
			}
		}
	}

	report := &CategoryReport{EdgeTypes: edgeTypes}
	for _, c := range byLang {
		report.Languages = append(report.Languages, *c)
	}
	sort.Slice(report.Languages, func(i, j int) bool {
		return report.Languages[i].Lang < report.Languages[j].Lang
	})
	return report
}
