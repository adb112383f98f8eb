package importer

import (
	"graphipedia/dataimport/internal/db"
	"graphipedia/dataimport/internal/wiki"
)

// Kind tells articles and categories apart.
type Kind int

const (
	KindArticle Kind = iota
	KindCategory
)

func (k Kind) String() string {
	if k == KindCategory {
		return db.LabelCategory
	}
	return db.LabelArticle
}

// Page is a node under construction. The counters belong to the variant
// named by Kind: Outdegree, Indegree and Geotags to articles, Size and
// Children to categories. Parents is shared.
type Page struct {
	Kind             Kind
	Title            string
	Lang             string
	WikiID           string
	StorageID        int64
	IsRedirect       bool
	IsDisambiguation bool

	Parents int

	Outdegree int
	Indegree  int
	Geotags   *wiki.Geotags

	Size     int
	Children int
}

// Labels returns the node labels of the page.
func (p *Page) Labels() []string {
	labels := []string{p.Kind.String()}
	if p.IsRedirect {
		labels = append(labels, db.LabelRedirect)
	}
	if p.IsDisambiguation {
		labels = append(labels, db.LabelDisambig)
	}
	return labels
}

func (p *Page) identity() db.Properties {
	return db.Properties{
		"title":  p.Title,
		"lang":   p.Lang,
		"wikiid": p.WikiID,
	}
}

// Properties returns the full property set written once all edges are in.
func (p *Page) Properties() db.Properties {
	props := p.identity()
	props["parents"] = p.Parents
	switch p.Kind {
	case KindArticle:
		props["outdegree"] = p.Outdegree
		props["indegree"] = p.Indegree
		if g := p.Geotags; g != nil {
			props["latitude"] = g.Latitude
			props["longitude"] = g.Longitude
			if g.Globe != "" {
				props["globe"] = g.Globe
			}
			if g.Type != "" {
				props["type"] = g.Type
			}
		}
	case KindCategory:
		props["size"] = p.Size
		props["children"] = p.Children
	}
	return props
}
