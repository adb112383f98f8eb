package dump

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"graphipedia/dataimport/internal/wiki"
)

// ErrMalformed is returned for dumps that are not well-formed XML.
var ErrMalformed = errors.New("malformed dump")

type xmlPage struct {
	Title    string `xml:"title"`
	ID       string `xml:"id"`
	Redirect *struct {
		Title string `xml:"title,attr"`
	} `xml:"redirect"`
	Revisions []struct {
		Text *struct {
			Body string `xml:",chardata"`
		} `xml:"text"`
	} `xml:"revision"`
}

// PageParser streams the pages of a pages-articles dump, one at a time.
// Only article and category pages are returned.
type PageParser struct {
	dec     *xml.Decoder
	ns      *wiki.Namespaces
	pages   int
	skipped int
}

// NewPageParser reads pages from r, classifying titles with ns.
func NewPageParser(r io.Reader, ns *wiki.Namespaces) *PageParser {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	return &PageParser{dec: dec, ns: ns}
}

// Next returns the next article or category page, or io.EOF.
func (p *PageParser) Next() (*wiki.RawPage, error) {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "page" {
			continue
		}

		var raw xmlPage
		if err := p.dec.DecodeElement(&raw, &start); err != nil {
			return nil, fmt.Errorf("%w: page after %d: %v", ErrMalformed, p.pages, err)
		}
		p.pages++
		if !wiki.IsGraphed(p.ns.Of(raw.Title)) {
			p.skipped++
			continue
		}

		page := &wiki.RawPage{
			Title: raw.Title,
			ID:    strings.TrimSpace(raw.ID),
		}
		if raw.Redirect != nil {
			page.RedirectTarget = raw.Redirect.Title
		}
		if n := len(raw.Revisions); n > 0 && raw.Revisions[n-1].Text != nil {
			page.Text = raw.Revisions[n-1].Text.Body
			page.HasText = true
		}
		return page, nil
	}
}

// Pages returns how many <page> elements have been read.
func (p *PageParser) Pages() int { return p.pages }

// Skipped returns how many pages were dropped for their namespace.
func (p *PageParser) Skipped() int { return p.skipped }

// ReadSiteNamespaces reads the namespace declarations from the siteinfo
// header of a dump. Reading stops at the end of the declarations.
func ReadSiteNamespaces(r io.Reader) (*wiki.Namespaces, error) {
	dec := xml.NewDecoder(r)
	var list []wiki.Namespace
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: no namespace declarations", ErrMalformed)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "namespace":
				var decl struct {
					Key   string `xml:"key,attr"`
					Title string `xml:",chardata"`
				}
				if err := dec.DecodeElement(&decl, &el); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
				}
				id, err := strconv.Atoi(decl.Key)
				if err != nil {
					return nil, fmt.Errorf("%w: namespace key %q", ErrMalformed, decl.Key)
				}
				list = append(list, wiki.Namespace{ID: id, Title: decl.Title})
			case "page":
				return nil, fmt.Errorf("%w: page before namespace declarations", ErrMalformed)
			}
		case xml.EndElement:
			if el.Name.Local == "namespaces" {
				return wiki.NewNamespaces(list)
			}
		}
	}
}
