package config

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"strings"
)

//go:embed data/*.tsv
var data embed.FS

// Edition is one language edition of Wikipedia.
type Edition struct {
	Language  string
	LocalName string
	Code      string
}

// Editions returns the packaged edition table.
func Editions() ([]Edition, error) {
	rows, err := readTable("data/wikipedias.tsv", 3)
	if err != nil {
		return nil, err
	}
	editions := make([]Edition, 0, len(rows))
	for _, r := range rows {
		editions = append(editions, Edition{Language: r[0], LocalName: r[1], Code: r[2]})
	}
	return editions, nil
}

// EditionCodes returns the codes of every packaged edition.
func EditionCodes() ([]string, error) {
	editions, err := Editions()
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(editions))
	for i, e := range editions {
		codes[i] = e.Code
	}
	return codes, nil
}

// RootCategories maps language codes to the root categories of the
// disambiguation pages and of the infobox templates. Their members are what
// disambiguation-pages.txt and infobox-templates.txt list.
func RootCategories() (disambiguation, infobox map[string]string, err error) {
	if disambiguation, err = readMap("data/dp-root-categories.tsv"); err != nil {
		return nil, nil, err
	}
	if infobox, err = readMap("data/it-root-categories.tsv"); err != nil {
		return nil, nil, err
	}
	return disambiguation, infobox, nil
}

func readMap(name string) (map[string]string, error) {
	rows, err := readTable(name, 2)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(rows))
	for _, r := range rows {
		m[r[0]] = r[1]
	}
	return m, nil
}

func readTable(name string, columns int) ([][]string, error) {
	raw, err := data.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	var rows [][]string
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != columns {
			return nil, fmt.Errorf("%s:%d: expected %d columns, got %d", name, lineNo, columns, len(fields))
		}
		rows = append(rows, fields)
	}
	return rows, scanner.Err()
}
