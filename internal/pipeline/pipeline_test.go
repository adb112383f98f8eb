package pipeline

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"go.uber.org/zap"

	"graphipedia/dataimport/internal/checkpoint"
	"graphipedia/dataimport/internal/config"
	"graphipedia/dataimport/internal/db"
)

const enPages = `<mediawiki>
  <siteinfo>
    <namespaces>
      <namespace key="0" case="first-letter" />
      <namespace key="6" case="first-letter">File</namespace>
      <namespace key="14" case="first-letter">Category</namespace>
    </namespaces>
  </siteinfo>
  <page>
    <title>Paris</title><ns>0</ns><id>1</id>
    <revision><text>'''Paris''' is the capital of [[France]]. [[File:Paris.jpg]] [[Category:Cities]]</text></revision>
  </page>
  <page>
    <title>France</title><ns>0</ns><id>2</id>
    <revision><text>A country.</text></revision>
  </page>
  <page>
    <title>Category:Cities</title><ns>14</ns><id>3</id>
    <revision><text>Cities.</text></revision>
  </page>
</mediawiki>`

const frPages = `<mediawiki>
  <siteinfo>
    <namespaces>
      <namespace key="0" case="first-letter" />
      <namespace key="6" case="first-letter">Fichier</namespace>
      <namespace key="14" case="first-letter">Catégorie</namespace>
    </namespaces>
  </siteinfo>
  <page>
    <title>Paris</title><ns>0</ns><id>10</id>
    <revision><text>'''Paris''' est une ville. [[Catégorie:Villes]]</text></revision>
  </page>
  <page>
    <title>Catégorie:Villes</title><ns>14</ns><id>11</id>
    <revision><text>Villes.</text></revision>
  </page>
</mediawiki>`

func writeBzip2(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w, err := bzip2.NewWriter(f, &bzip2.WriterConfig{Level: bzip2.BestSpeed})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := gzip.NewWriter(f)
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

// setupEditions writes an English and a French edition whose langlinks only
// point at languages outside the run.
func setupEditions(t *testing.T) config.Settings {
	t.Helper()
	root := t.TempDir()
	editions := []struct {
		lang, pages, langlinks, geotags string
	}{
		{"en", enPages,
			"INSERT INTO `langlinks` VALUES (1,'de','Paris'),(2,'es','Francia');\n",
			"INSERT INTO `geo_tags` VALUES (1,1,'earth',1,48.8567,2.3508,NULL,'city',NULL,NULL,NULL);\n"},
		{"fr", frPages,
			"INSERT INTO `langlinks` VALUES (10,'it','Parigi');\n",
			"INSERT INTO `geo_tags` VALUES (1,99,'earth',1,1,1,NULL,NULL,NULL,NULL,NULL);\n"},
	}
	for _, e := range editions {
		dir := filepath.Join(root, e.lang)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		prefix := e.lang + "wiki-20240601-"
		writeBzip2(t, filepath.Join(dir, prefix+config.PagesSuffix), e.pages)
		writeGzip(t, filepath.Join(dir, prefix+config.LanglinksSuffix), e.langlinks)
		writeGzip(t, filepath.Join(dir, prefix+config.GeotagsSuffix), e.geotags)
	}
	s := config.Default()
	s.Root = root
	return s
}

func openGraph(t *testing.T, s config.Settings) *db.DB {
	t.Helper()
	d, err := db.OpenDB(s.DatabasePath())
	if err != nil {
		t.Fatalf("opening graph: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestRun_TwoLanguagesWithoutCrosslinks(t *testing.T) {
	s := setupEditions(t)
	p, err := New(s, []string{"en", "fr"}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Nodes != 5 {
		t.Errorf("expected 5 nodes, got %d", summary.Nodes)
	}
	if len(summary.Languages) != 2 {
		t.Fatalf("expected 2 language results, got %d", len(summary.Languages))
	}
	for _, res := range summary.Languages {
		if res.Crosslinks != 0 {
			t.Errorf("%s: expected no cross-links, got %d", res.Lang, res.Crosslinks)
		}
	}
	en := summary.Languages[0]
	if en.Lang != "en" || en.Pages != 3 || en.Import.Geotagged != 1 {
		t.Errorf("en result = %+v", en)
	}

	d := openGraph(t, s)
	counts, err := d.EdgeTypeCounts()
	if err != nil {
		t.Fatal(err)
	}
	if counts[db.RelCrosslink] != 0 {
		t.Errorf("expected no crosslink edges, got %d", counts[db.RelCrosslink])
	}
	if counts[db.RelBelongTo] != 2 || counts[db.RelLink] != 1 {
		t.Errorf("edge counts = %v", counts)
	}

	villes, err := d.FindNodesByProperty(db.LabelCategory, "title", "Catégorie:Villes")
	if err != nil || len(villes) != 1 {
		t.Fatalf("category lookup: %v %+v", err, villes)
	}
	if villes[0].String("lang") != "fr" {
		t.Errorf("lang = %q", villes[0].String("lang"))
	}

	runs, err := d.ImportRuns()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].RunID != p.RunID() {
		t.Errorf("import runs = %+v", runs)
	}

	for _, path := range []string{
		s.CheckpointPath(),
		s.EditionFile("en", config.IntermediateFile),
		s.EditionFile("fr", config.CrosslinksFile),
	} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s should be removed after a complete run", path)
		}
	}
	if _, err := os.Stat(s.EditionFile("en", config.NamespacesFile)); err != nil {
		t.Errorf("namespace table should be saved: %v", err)
	}
}

func TestRun_ResumesFromLedger(t *testing.T) {
	s := setupEditions(t)
	s.KeepFiles = true
	p, err := New(s, []string{"en"}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	first, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}

	ledger, err := checkpoint.Open(s.CheckpointPath())
	if err != nil {
		t.Fatal(err)
	}
	for _, stage := range []checkpoint.Stage{checkpoint.EditionDownload, checkpoint.LinksExtracted, checkpoint.CrosslinksExtracted} {
		if !ledger.Done(stage, "en") {
			t.Errorf("stage %s not recorded", stage)
		}
	}

	// the pages dump is no longer needed once its links are extracted
	pages, err := s.FindDump("en", config.PagesSuffix)
	if err != nil {
		t.Fatal(err)
	}
	writeBzip2(t, pages, "<mediawiki><siteinfo>broken")

	p, err = New(s, []string{"en"}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("resumed Run: %v", err)
	}
	if summary.Nodes != 3 {
		t.Errorf("expected the graph rebuilt with 3 nodes, got %d", summary.Nodes)
	}
	was, got := first.Languages[0], summary.Languages[0]
	if was.Reused || !got.Reused {
		t.Errorf("reused = %v then %v", was.Reused, got.Reused)
	}
	if got.Pages != was.Pages || got.Links != was.Links || got.Pages == 0 {
		t.Errorf("resumed counts pages=%d links=%d, first run pages=%d links=%d",
			got.Pages, got.Links, was.Pages, was.Links)
	}
}

func TestRun_MissingDump(t *testing.T) {
	s := setupEditions(t)
	p, err := New(s, []string{"en", "de"}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected an error for the missing de edition")
	}
	if _, err := os.Stat(s.DatabasePath()); !os.IsNotExist(err) {
		t.Error("graph should not be created when a dump is missing")
	}
}

func TestNew_NoLanguages(t *testing.T) {
	if _, err := New(config.Default(), nil, zap.NewNop()); err == nil {
		t.Fatal("expected an error without languages")
	}
}

func TestNew_RejectsLanguageOutsideRoot(t *testing.T) {
	if _, err := New(config.Default(), []string{"en", "../x"}, zap.NewNop()); err == nil {
		t.Fatal("expected an error for ../x")
	}
}
