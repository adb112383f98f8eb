package importer

import (
	"io"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"graphipedia/dataimport/internal/db"
	"graphipedia/dataimport/internal/intermediate"
	"graphipedia/dataimport/internal/wiki"
)

type sliceSource struct {
	records []wiki.PageRecord
	pos     int
}

func (s *sliceSource) Next() (*wiki.PageRecord, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return &rec, nil
}

type edge struct {
	source, target int64
	relType        string
	props          db.Properties
}

// memStore records writes in memory.
type memStore struct {
	labels map[int64][]string
	props  map[int64]db.Properties
	edges  []edge
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{labels: map[int64][]string{}, props: map[int64]db.Properties{}}
}

func (m *memStore) CreateNode(labels []string, props db.Properties) (int64, error) {
	m.nextID++
	m.labels[m.nextID] = labels
	m.props[m.nextID] = props
	return m.nextID, nil
}

func (m *memStore) SetNodeProperties(id int64, props db.Properties) error {
	m.props[id] = props
	return nil
}

func (m *memStore) CreateRelationship(s, t int64, relType string, props db.Properties) error {
	m.edges = append(m.edges, edge{s, t, relType, props})
	return nil
}

func runPasses(t *testing.T, b *Builder, records []wiki.PageRecord) {
	t.Helper()
	if err := b.CreateNodes(&sliceSource{records: records}); err != nil {
		t.Fatalf("CreateNodes: %v", err)
	}
	if err := b.CreateEdges(&sliceSource{records: records}); err != nil {
		t.Fatalf("CreateEdges: %v", err)
	}
}

func TestBuilder_ArticleBelongsToCategory(t *testing.T) {
	store := newMemStore()
	b := NewBuilder(store, "en", nil, zap.NewNop())
	runPasses(t, b, []wiki.PageRecord{
		{Title: "A", WikiID: "1", Namespace: wiki.Main, Links: []wiki.LinkRecord{
			{Target: "Category:B", Offset: 10, Rank: 2, Occurrences: 1},
		}},
		{Title: "Category:B", WikiID: "2", Namespace: wiki.Category},
	})

	if len(store.edges) != 1 || store.edges[0].relType != db.RelBelongTo {
		t.Fatalf("edges = %+v", store.edges)
	}
	a, _ := b.Lookup("A")
	cat, _ := b.Lookup("Category:B")
	if a.Parents != 1 || cat.Size != 1 {
		t.Errorf("A.parents=%d B.size=%d, want 1 and 1", a.Parents, cat.Size)
	}
	props := store.edges[0].props
	if props["offset"] != 10 || props["rank"] != 2 || props["occurrences"] != 1 {
		t.Errorf("edge props = %v", props)
	}
	if _, ok := props["infobox"]; ok {
		t.Error("false flags should be omitted")
	}
	if st := b.Stats(); st.Records != 2 || st.Links != 1 {
		t.Errorf("read %d records and %d links, want 2 and 1", st.Records, st.Links)
	}
}

func TestBuilder_EdgeTypes(t *testing.T) {
	store := newMemStore()
	b := NewBuilder(store, "en", nil, zap.NewNop())
	runPasses(t, b, []wiki.PageRecord{
		{Title: "Art", WikiID: "1", Namespace: wiki.Main, Links: []wiki.LinkRecord{
			{Target: "Other", Rank: 1, Occurrences: 2, Anchors: []string{"o"}, InIntro: true},
			{Target: "Missing", Rank: 2, Occurrences: 1},
		}},
		{Title: "Other", WikiID: "2", Namespace: wiki.Main},
		{Title: "Alias", WikiID: "3", Namespace: wiki.Main, IsRedirect: true, Links: []wiki.LinkRecord{
			{Target: "Category:Top", Rank: 1, Occurrences: 1},
		}},
		{Title: "Category:Sub", WikiID: "4", Namespace: wiki.Category, Links: []wiki.LinkRecord{
			{Target: "Category:Top", Rank: 1, Occurrences: 1},
			{Target: "Art", Rank: 2, Occurrences: 1},
		}},
		{Title: "Category:Top", WikiID: "5", Namespace: wiki.Category},
	})

	stats := b.Stats()
	want := map[string]int{db.RelLink: 1, db.RelRedirectTo: 1, db.RelChildOf: 1}
	for rel, n := range want {
		if stats.Edges[rel] != n {
			t.Errorf("%s edges = %d, want %d", rel, stats.Edges[rel], n)
		}
	}
	if stats.Unresolved != 1 || stats.Dropped != 1 {
		t.Errorf("unresolved=%d dropped=%d", stats.Unresolved, stats.Dropped)
	}

	art, _ := b.Lookup("Art")
	other, _ := b.Lookup("Other")
	sub, _ := b.Lookup("Category:Sub")
	top, _ := b.Lookup("Category:Top")
	alias, _ := b.Lookup("Alias")
	if art.Outdegree != 1 || other.Indegree != 1 {
		t.Errorf("outdegree=%d indegree=%d", art.Outdegree, other.Indegree)
	}
	if sub.Parents != 1 || top.Children != 1 {
		t.Errorf("sub.parents=%d top.children=%d", sub.Parents, top.Children)
	}
	if alias.Parents != 0 || top.Size != 0 {
		t.Error("redirect edges must not touch counters")
	}
	if got := alias.Labels(); len(got) != 2 || got[1] != db.LabelRedirect {
		t.Errorf("redirect labels = %v", got)
	}

	for _, e := range store.edges {
		if e.relType == db.RelLink {
			if e.props["intro"] != true {
				t.Errorf("intro flag missing: %v", e.props)
			}
			if anchors, _ := e.props["anchors"].([]string); len(anchors) != 1 {
				t.Errorf("anchors = %v", e.props["anchors"])
			}
		}
	}
}

func TestBuilder_DuplicateTitleOverwritesIndex(t *testing.T) {
	store := newMemStore()
	b := NewBuilder(store, "en", nil, zap.NewNop())
	runPasses(t, b, []wiki.PageRecord{
		{Title: "Twin", WikiID: "1", Namespace: wiki.Main},
		{Title: "Twin", WikiID: "2", Namespace: wiki.Main},
	})
	if len(store.labels) != 2 {
		t.Fatalf("both nodes are created, got %d", len(store.labels))
	}
	p, _ := b.Lookup("Twin")
	if p.WikiID != "2" || b.Stats().Duplicates != 1 {
		t.Errorf("index holds wikiid %s, duplicates=%d", p.WikiID, b.Stats().Duplicates)
	}
}

func TestBuilder_FlushAttributes(t *testing.T) {
	store := newMemStore()
	geotags := map[string]wiki.Geotags{
		"1": {Globe: "earth", Latitude: 48.85, Longitude: 2.35},
		"2": {Latitude: 1, Longitude: 1},
	}
	b := NewBuilder(store, "fr", geotags, zap.NewNop())
	runPasses(t, b, []wiki.PageRecord{
		{Title: "Paris", WikiID: "1", Namespace: wiki.Main, Links: []wiki.LinkRecord{
			{Target: "Catégorie:Capitale", Rank: 1, Occurrences: 1},
		}},
		{Title: "Catégorie:Capitale", WikiID: "2", Namespace: wiki.Category},
	})
	if err := b.FlushAttributes(); err != nil {
		t.Fatal(err)
	}

	paris, _ := b.Lookup("Paris")
	props := store.props[paris.StorageID]
	if props["lang"] != "fr" || props["parents"] != 1 || props["outdegree"] != 0 {
		t.Errorf("paris props = %v", props)
	}
	if props["globe"] != "earth" || props["latitude"] != 48.85 {
		t.Errorf("geotags not flushed: %v", props)
	}
	if _, ok := props["type"]; ok {
		t.Error("empty geotag type should be omitted")
	}

	cat, _ := b.Lookup("Catégorie:Capitale")
	cprops := store.props[cat.StorageID]
	if cprops["size"] != 1 || cprops["children"] != 0 {
		t.Errorf("category props = %v", cprops)
	}
	if _, ok := cprops["latitude"]; ok {
		t.Error("categories never carry geotags")
	}
}

func TestBuilder_ImportIntoDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intermediate.xml.bz2")
	w, err := intermediate.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range []wiki.PageRecord{
		{Title: "A", WikiID: "1", Namespace: wiki.Main, Links: []wiki.LinkRecord{{Target: "Category:B", Rank: 1, Occurrences: 1}}},
		{Title: "Category:B", WikiID: "2", Namespace: wiki.Category},
	} {
		if err := w.Write(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	d, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	in := d.NewInserter(100)
	stats, err := NewBuilder(in, "en", nil, zap.NewNop()).Import(path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := in.Close(); err != nil {
		t.Fatal(err)
	}
	if stats.Nodes != 2 || stats.Edges[db.RelBelongTo] != 1 {
		t.Errorf("stats = %+v", stats)
	}

	cats, err := d.FindNodesByProperty(db.LabelCategory, "title", "Category:B")
	if err != nil || len(cats) != 1 {
		t.Fatalf("category lookup: %v %+v", err, cats)
	}
	if cats[0].Int("size") != 1 {
		t.Errorf("size = %d", cats[0].Int("size"))
	}
}
