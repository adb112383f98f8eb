package cmd

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"graphipedia/dataimport/internal/config"
	"graphipedia/dataimport/internal/db"
	"graphipedia/dataimport/internal/graph"
)

func TestResolveLanguages(t *testing.T) {
	editions, err := config.EditionCodes()
	if err != nil {
		t.Fatal(err)
	}
	fromFile := config.Default()
	fromFile.Languages = []string{"it", "de"}

	tests := []struct {
		name     string
		args     []string
		settings config.Settings
		want     []string
		wantErr  bool
	}{
		{name: "argument", args: []string{"en, FR,en"}, settings: fromFile, want: []string{"en", "fr"}},
		{name: "settings file", settings: fromFile, want: []string{"it", "de"}},
		{name: "every edition", settings: config.Default(), want: editions},
		{name: "blank argument", args: []string{" , "}, settings: config.Default(), wantErr: true},
		{name: "path in argument", args: []string{"en,../x"}, settings: config.Default(), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveLanguages(tt.args, tt.settings)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruncTitle(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Paris", 10, "Paris"},
		{"Catégorie:Villes", 4, "Cat..."},
		{"Catégorie:Villes", 5, "Caté..."},
	}
	for _, tt := range tests {
		if got := truncTitle(tt.in, tt.max); got != tt.want {
			t.Errorf("truncTitle(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestPrintStats(t *testing.T) {
	snap := graph.NewSnapshot(
		[]*graph.NodeInfo{
			{ID: 1, Title: "Paris", Lang: "en", Labels: []string{db.LabelArticle}},
			{ID: 2, Title: "Category:Cities", Lang: "en", Labels: []string{db.LabelCategory}},
			{ID: 3, Title: "Lonely", Lang: "en", Labels: []string{db.LabelArticle}},
		},
		[]graph.EdgeInfo{{ID: 1, Source: 1, Target: 2, Type: db.RelBelongTo}},
	)
	cfg := graph.DefaultConfig()
	cfg.Bridges = true
	report := graph.Analyze(snap, cfg)
	runs := []db.ImportRun{{RunID: "0123456789abcdef", Lang: "en", Nodes: 3, Edges: 1, StartedAt: 1, DurationMs: 1500}}

	var buf bytes.Buffer
	printStats(&buf, runs, report, snap)
	out := buf.String()
	for _, want := range []string{"01234567 en", "belongTo", "Orphans: 1", "en:Lonely", "1 bridge edges"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
