package wiki

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var linkPattern = regexp.MustCompile(`\[\[(.+?)\]\]`)

// Lookups are the read-only tables the analyzer consults.
type Lookups struct {
	Namespaces          *Namespaces
	InfoboxTemplates    TitleSet
	DisambiguationPages TitleSet
	// Editions holds lower-case language codes; links prefixed with one
	// point to another edition.
	Editions TitleSet
}

// Analyzer turns raw page markup into link records.
type Analyzer struct {
	lookups Lookups
}

// NewAnalyzer returns an analyzer over the given tables.
func NewAnalyzer(lookups Lookups) *Analyzer {
	return &Analyzer{lookups: lookups}
}

// RawPage is a page as read from a dump.
type RawPage struct {
	Title          string
	ID             string
	Text           string
	HasText        bool
	RedirectTarget string
}

// Record builds the intermediate record for a page. A redirect page gets a
// single link to its target; other pages get their analyzed links.
func (a *Analyzer) Record(p *RawPage) PageRecord {
	rec := PageRecord{
		Title:            p.Title,
		WikiID:           p.ID,
		Namespace:        a.lookups.Namespaces.Of(p.Title),
		IsRedirect:       p.RedirectTarget != "",
		IsDisambiguation: a.lookups.DisambiguationPages.Contains(p.Title),
	}
	if rec.IsRedirect {
		target := NormalizeTitle(p.RedirectTarget)
		if target != p.Title && IsGraphed(a.linkNamespace(target)) {
			rec.Links = []LinkRecord{{Target: target, Rank: 1, Occurrences: 1}}
		}
		return rec
	}
	rec.Links = a.Analyze(p.Title, p.Text, p.HasText)
	return rec
}

// Analyze extracts the outgoing links of a page in first-seen order.
func (a *Analyzer) Analyze(title, text string, hasText bool) []LinkRecord {
	if !hasText || text == "" {
		return nil
	}

	text = StripReferences(text)
	infobox, hasInfobox := FindInfobox(text, a.lookups.InfoboxTemplates)
	if hasInfobox {
		infobox = runeSpan(text, infobox)
	}
	text = StripTemplates(text)
	intro, hasIntro := FindIntroduction(text)
	if hasIntro {
		intro = runeSpan(text, intro)
	}
	disambiguation := a.lookups.DisambiguationPages.Contains(title)

	var links []LinkRecord
	index := make(map[string]int)
	rank := 0
	runeOffset, lastByte := 0, 0
	for _, m := range linkPattern.FindAllStringSubmatchIndex(text, -1) {
		rank++
		start := m[0]
		runeOffset += utf8.RuneCountInString(text[lastByte:start])
		lastByte = start

		target, anchor, hasAnchor := splitAnchor(NormalizeTitle(text[m[2]:m[3]]))
		if target == title {
			continue
		}
		if !IsGraphed(a.linkNamespace(target)) {
			continue
		}

		inInfobox := hasInfobox && infobox.Contains(runeOffset)
		inIntro := hasIntro && intro.Contains(runeOffset)
		isDisambiguation := disambiguation && isBulletLead(text, start)

		if i, ok := index[target]; ok {
			l := &links[i]
			if hasAnchor {
				l.AddAnchor(anchor)
			}
			l.Occurrences++
			l.InInfobox = l.InInfobox || inInfobox
			l.InIntro = l.InIntro || inIntro
			l.IsDisambiguation = l.IsDisambiguation || isDisambiguation
			continue
		}
		l := LinkRecord{
			Target:           target,
			Offset:           runeOffset,
			Rank:             rank,
			Occurrences:      1,
			InInfobox:        inInfobox,
			InIntro:          inIntro,
			IsDisambiguation: isDisambiguation,
		}
		if hasAnchor {
			l.AddAnchor(anchor)
		}
		index[target] = len(links)
		links = append(links, l)
	}
	return links
}

func (a *Analyzer) linkNamespace(target string) int {
	return a.lookups.Namespaces.LinkNamespace(target, a.lookups.Editions)
}

// splitAnchor separates "target|anchor" at the last bar.
func splitAnchor(link string) (target, anchor string, ok bool) {
	bar := strings.LastIndexByte(link, '|')
	if bar < 0 {
		return link, "", false
	}
	return link[:bar], link[bar+1:], true
}

// isBulletLead reports whether the link at offset is the first thing on a
// bullet line, ignoring bold and italic quotes.
func isBulletLead(text string, offset int) bool {
	star := strings.LastIndexByte(text[:offset], '*')
	if star < 0 {
		return false
	}
	lead := strings.ReplaceAll(text[star+1:offset], "'", "")
	return strings.TrimSpace(lead) == ""
}

// runeSpan converts a byte span of text into rune offsets.
func runeSpan(text string, s Span) Span {
	start := utf8.RuneCountInString(text[:s.Start])
	end := s.End
	if end > len(text) {
		end = len(text)
	}
	return Span{
		Start: start,
		End:   start + utf8.RuneCountInString(text[s.Start:end]) + (s.End - end),
	}
}
