package wiki

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Namespace ids are stable across language editions.
const (
	Media         = -2
	Special       = -1
	Main          = 0
	Talk          = 1
	User          = 2
	UserTalk      = 3
	Project       = 4
	ProjectTalk   = 5
	File          = 6
	FileTalk      = 7
	MediaWiki     = 8
	MediaWikiTalk = 9
	Template      = 10
	TemplateTalk  = 11
	Help          = 12
	HelpTalk      = 13
	Category      = 14
	CategoryTalk  = 15
	Portal        = 100
	PortalTalk    = 101
	Book          = 108
	BookTalk      = 109
	Draft         = 118
	DraftTalk     = 119
	TimedText     = 710
	TimedTextTalk = 711
	Module        = 828
	ModuleTalk    = 829

	// Any marks a title that cannot be placed in a namespace.
	Any = math.MinInt32
)

// canonical holds the English names every edition accepts as aliases of
// its local namespace titles.
var canonical = map[string]int{
	"Media":          Media,
	"Special":        Special,
	"Talk":           Talk,
	"User":           User,
	"User talk":      UserTalk,
	"Wikipedia":      Project,
	"Project":        Project,
	"Wikipedia talk": ProjectTalk,
	"Project talk":   ProjectTalk,
	"File":           File,
	"Image":          File,
	"File talk":      FileTalk,
	"Image talk":     FileTalk,
	"MediaWiki":      MediaWiki,
	"MediaWiki talk": MediaWikiTalk,
	"Template":       Template,
	"Template talk":  TemplateTalk,
	"Help":           Help,
	"Help talk":      HelpTalk,
	"Category":       Category,
	"Category talk":  CategoryTalk,
	"Portal":         Portal,
	"Portal talk":    PortalTalk,
	"Book":           Book,
	"Book talk":      BookTalk,
	"Draft":          Draft,
	"Draft talk":     DraftTalk,
	"TimedText":      TimedText,
	"TimedText talk": TimedTextTalk,
	"Module":         Module,
	"Module talk":    ModuleTalk,
}

// Namespace is one entry of an edition's namespace table.
type Namespace struct {
	ID    int
	Title string
}

// Namespaces is the immutable namespace table of one language edition.
type Namespaces struct {
	byID    map[int]Namespace
	byTitle map[string]Namespace
}

// NewNamespaces builds a table, rejecting duplicate ids or titles.
func NewNamespaces(list []Namespace) (*Namespaces, error) {
	ns := &Namespaces{
		byID:    make(map[int]Namespace, len(list)),
		byTitle: make(map[string]Namespace, len(list)),
	}
	for _, n := range list {
		if _, ok := ns.byID[n.ID]; ok {
			return nil, fmt.Errorf("duplicate namespace id %d", n.ID)
		}
		if _, ok := ns.byTitle[n.Title]; ok {
			return nil, fmt.Errorf("duplicate namespace title %q", n.Title)
		}
		ns.byID[n.ID] = n
		ns.byTitle[n.Title] = n
	}
	return ns, nil
}

// IsGraphed reports whether pages of namespace id become graph nodes.
func IsGraphed(id int) bool {
	return id == Main || id == Category
}

// Len returns the number of declared namespaces.
func (ns *Namespaces) Len() int {
	if ns == nil {
		return 0
	}
	return len(ns.byID)
}

// Title returns the local title of namespace id.
func (ns *Namespaces) Title(id int) (string, bool) {
	if ns == nil {
		return "", false
	}
	n, ok := ns.byID[id]
	return n.Title, ok
}

// List returns the table ordered by id.
func (ns *Namespaces) List() []Namespace {
	if ns == nil {
		return nil
	}
	out := make([]Namespace, 0, len(ns.byID))
	for _, n := range ns.byID {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Of returns the namespace of a page title. The prefix before the first
// colon is looked up among the canonical English names, then in the local
// table; an unrecognised prefix is part of an article title.
func (ns *Namespaces) Of(title string) int {
	if title == "" {
		return Any
	}
	colon := strings.IndexByte(title, ':')
	if colon < 0 {
		return Main
	}
	prefix := strings.TrimSpace(title[:colon])
	if prefix == "" {
		return Main
	}
	if id, ok := canonical[prefix]; ok {
		return id
	}
	if ns != nil {
		if n, ok := ns.byTitle[prefix]; ok {
			return n.ID
		}
	}
	return Main
}

// interwiki holds the prefixes of links to sister projects, in lower case.
var interwiki = NewTitleSet(
	"wikt", "wiktionary", "commons", "c", "meta", "m", "s", "wikisource",
	"q", "wikiquote", "b", "wikibooks", "n", "wikinews", "v", "wikiversity",
	"voy", "wikivoyage", "species", "wikispecies", "d", "wikidata",
	"mw", "mediawikiwiki", "phab", "foundation", "wmf", "w",
	"incubator", "outreach", "toollabs", "bugzilla", "doi", "rfc",
)

// LinkNamespace returns the namespace of a link target. Unlike Of, a prefix
// naming a language edition in foreign or an interwiki project is Any: such
// links leave the edition. Other unknown prefixes stay part of the title, as
// in "Star Wars: Episode IV".
func (ns *Namespaces) LinkNamespace(target string, foreign TitleSet) int {
	id := ns.Of(target)
	if id != Main {
		return id
	}
	prefix, _, ok := strings.Cut(target, ":")
	if !ok {
		return Main
	}
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" || strings.ContainsRune(prefix, ' ') {
		return Main
	}
	if interwiki.Contains(prefix) || foreign.Contains(prefix) {
		return Any
	}
	return Main
}

// LoadNamespaces reads a table saved by Save.
func LoadNamespaces(path string) (*Namespaces, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening namespace table: %w", err)
	}
	defer f.Close()

	var list []Namespace
	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if line == "" {
			continue
		}
		idText, title, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected id<TAB>title", path, lineNo)
		}
		id, err := strconv.Atoi(idText)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad namespace id: %w", path, lineNo, err)
		}
		list = append(list, Namespace{ID: id, Title: title})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading namespace table: %w", err)
	}
	return NewNamespaces(list)
}

// Save writes the table as id<TAB>title lines.
func (ns *Namespaces) Save(path string) error {
	var b strings.Builder
	for _, n := range ns.List() {
		fmt.Fprintf(&b, "%d\t%s\n", n.ID, n.Title)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing namespace table: %w", err)
	}
	return nil
}
