package wiki

import (
	"path/filepath"
	"testing"
)

func TestNamespaces_Of(t *testing.T) {
	ns := testNamespaces(t)
	tests := []struct {
		title string
		want  int
	}{
		{"", Any},
		{"Paris", Main},
		{"Catégorie:Villes", Category},
		{"Category:Cities", Category},
		{"Fichier:x.png", File},
		{"Image:x.png", File},
		{"Talk:Paris", Talk},
		{"Star Wars: Episode IV", Main},
		{":Catégorie:Villes", Main},
	}
	for _, tt := range tests {
		if got := ns.Of(tt.title); got != tt.want {
			t.Errorf("Of(%q) = %d, want %d", tt.title, got, tt.want)
		}
	}
}

func TestNamespaces_LinkNamespace(t *testing.T) {
	ns := testNamespaces(t)
	editions := NewTitleSet("en", "fr", "zh-yue")
	tests := []struct {
		target string
		want   int
	}{
		{"Paris", Main},
		{"Catégorie:Villes", Category},
		{"Category:Cities", Category},
		{"Fr:Paris", Any},
		{"Zh-yue:巴黎", Any},
		{"Wikt:capital", Any},
		{"S:Les Misérables", Any},
		{"Xx:Unknown", Main},
		{"Star Wars: Episode IV", Main},
		{"Ratio 1:2", Main},
	}
	for _, tt := range tests {
		if got := ns.LinkNamespace(tt.target, editions); got != tt.want {
			t.Errorf("LinkNamespace(%q) = %d, want %d", tt.target, got, tt.want)
		}
	}
	if got := ns.LinkNamespace("Fr:Paris", nil); got != Main {
		t.Errorf("without editions Fr:Paris = %d, want Main", got)
	}
}

func TestNewNamespaces_RejectsDuplicates(t *testing.T) {
	if _, err := NewNamespaces([]Namespace{{ID: 14, Title: "A"}, {ID: 14, Title: "B"}}); err == nil {
		t.Error("expected duplicate id error")
	}
	if _, err := NewNamespaces([]Namespace{{ID: 1, Title: "A"}, {ID: 2, Title: "A"}}); err == nil {
		t.Error("expected duplicate title error")
	}
}

func TestNamespaces_SaveLoad(t *testing.T) {
	ns := testNamespaces(t)
	path := filepath.Join(t.TempDir(), "namespaces.tsv")
	if err := ns.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadNamespaces(path)
	if err != nil {
		t.Fatalf("LoadNamespaces: %v", err)
	}
	if loaded.Len() != ns.Len() {
		t.Fatalf("loaded %d namespaces, want %d", loaded.Len(), ns.Len())
	}
	if title, _ := loaded.Title(Category); title != "Catégorie" {
		t.Errorf("category title = %q", title)
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"a":       "A",
		"paris":   "Paris",
		"Paris":   "Paris",
		"élysée":  "Élysée",
		"iPhone":  "IPhone",
		"1st war": "1st war",
	}
	for in, want := range tests {
		if got := NormalizeTitle(in); got != want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", in, got, want)
		}
	}
	if got := NormalizeTemplateName(" infobox_settlement "); got != "Infobox settlement" {
		t.Errorf("NormalizeTemplateName = %q", got)
	}
}
