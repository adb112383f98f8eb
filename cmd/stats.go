package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"graphipedia/dataimport/internal/db"
	"graphipedia/dataimport/internal/graph"
)

var (
	statsJSON         bool
	statsLang         string
	statsTopN         int
	statsHubThreshold int
	statsBridges      bool
	statsEdgeTypes    []string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics of an imported graph: imports, labels, topology",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		runs, err := d.ImportRuns()
		if err != nil {
			return fmt.Errorf("reading import runs: %w", err)
		}
		snap, err := graph.SnapshotFromDB(d, statsLang)
		if err != nil {
			return fmt.Errorf("loading graph: %w", err)
		}

		cfg := graph.DefaultConfig()
		cfg.TopN = statsTopN
		cfg.HubThreshold = statsHubThreshold
		cfg.Bridges = statsBridges
		cfg.EdgeTypes = statsEdgeTypes
		report := graph.Analyze(snap, cfg)

		if statsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Imports []db.ImportRun `json:"imports"`
				*graph.Report
			}{runs, report})
		}

		printStats(os.Stdout, runs, report, snap)
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	statsCmd.Flags().StringVar(&statsLang, "lang", "", "Scope analysis to one language edition")
	statsCmd.Flags().IntVar(&statsTopN, "top-n", 10, "Number of top items to show per section")
	statsCmd.Flags().IntVar(&statsHubThreshold, "hub-threshold", 100, "Minimum degree to consider a node a hub")
	statsCmd.Flags().BoolVar(&statsBridges, "bridges", false, "Search articulation points and bridge edges")
	statsCmd.Flags().StringSliceVar(&statsEdgeTypes, "edge-types", nil, "Restrict topology to these edge types, e.g. link,crosslink")
	rootCmd.AddCommand(statsCmd)
}

func printStats(w io.Writer, runs []db.ImportRun, report *graph.Report, snap *graph.GraphSnapshot) {
	if len(runs) > 0 {
		fmt.Fprintln(w, "\n  IMPORTS")
		fmt.Fprintln(w, "  ────────────────────────────────────────")
		for _, r := range runs {
			fmt.Fprintf(w, "  %s %-6s %12s nodes %12s edges  %s  (%s)\n",
				truncID(r.RunID), r.Lang,
				humanize.Comma(r.Nodes), humanize.Comma(r.Edges),
				(time.Duration(r.DurationMs) * time.Millisecond).Round(time.Second),
				humanize.Time(time.UnixMilli(r.StartedAt)))
		}
	}

	c := report.Categories
	fmt.Fprintln(w, "\n  LABELS")
	fmt.Fprintln(w, "  ────────────────────────────────────────")
	fmt.Fprintf(w, "  %-6s %12s %12s %10s %10s %12s %10s\n",
		"lang", "articles", "categories", "redirects", "disambig", "uncategorized", "roots")
	for _, l := range c.Languages {
		fmt.Fprintf(w, "  %-6s %12s %12s %10s %10s %12s %10s\n", l.Lang,
			humanize.Comma(int64(l.Articles)), humanize.Comma(int64(l.Categories)),
			humanize.Comma(int64(l.Redirects)), humanize.Comma(int64(l.Disambiguation)),
			humanize.Comma(int64(l.Uncategorized)), humanize.Comma(int64(l.RootCategories)))
	}
	types := make([]string, 0, len(c.EdgeTypes))
	for t := range c.EdgeTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	fmt.Fprintln(w, "\n  Edges by type:")
	for _, t := range types {
		fmt.Fprintf(w, "    %-12s %12s\n", t, humanize.Comma(int64(c.EdgeTypes[t])))
	}

	t := report.Topology
	fmt.Fprintln(w, "\n  TOPOLOGY")
	fmt.Fprintln(w, "  ────────────────────────────────────────")
	fmt.Fprintf(w, "  Nodes: %s  Edges: %s  Components: %s\n",
		humanize.Comma(int64(t.TotalNodes)), humanize.Comma(int64(t.TotalEdges)), humanize.Comma(int64(t.NumComponents)))
	fmt.Fprintf(w, "  Largest component: %s  Smallest: %s\n",
		humanize.Comma(int64(t.LargestComponent)), humanize.Comma(int64(t.SmallestComponent)))

	if t.OrphanCount > 0 {
		fmt.Fprintf(w, "  Orphans: %s disconnected nodes\n", humanize.Comma(int64(t.OrphanCount)))
		limit := 5
		if len(t.OrphanIDs) < limit {
			limit = len(t.OrphanIDs)
		}
		for _, id := range t.OrphanIDs[:limit] {
			fmt.Fprintf(w, "    - %d %s\n", id, nodeLabel(snap, id, 50))
		}
		if t.OrphanCount > limit {
			fmt.Fprintf(w, "    ... and %d more\n", t.OrphanCount-limit)
		}
	}

	printHistogram(w, "Degree distribution:", t.DegreeHistogram)
	printHistogram(w, "Incoming edges:", t.InDegreeHistogram)

	if len(t.Hubs) > 0 {
		fmt.Fprintln(w, "\n  Top hubs (degree > threshold):")
		for _, hub := range t.Hubs {
			fmt.Fprintf(w, "    %d degree=%d (in=%d, out=%d)  %s\n",
				hub.ID, hub.Degree, hub.InDegree, hub.OutDegree, nodeLabel(snap, hub.ID, 40))
		}
	}

	if br := report.Bridges; br != nil {
		fmt.Fprintln(w, "\n  STRUCTURE")
		fmt.Fprintln(w, "  ────────────────────────────────────────")
		fmt.Fprintf(w, "  %d articulation points, %d bridge edges\n", br.APCount, br.BridgeCount)
		limit := 10
		if len(br.ArticulationPoints) < limit {
			limit = len(br.ArticulationPoints)
		}
		for _, ap := range br.ArticulationPoints[:limit] {
			fmt.Fprintf(w, "    %d (degree ~%d)  %s\n", ap.ID, ap.ComponentsIfRemoved, truncTitle(ap.Title, 40))
		}
		if len(br.LanguagePairs) > 0 {
			fmt.Fprintln(w, "\n  Edges between languages:")
			for _, p := range br.LanguagePairs {
				fmt.Fprintf(w, "    %s <-> %s  %s\n", p.LangA, p.LangB, humanize.Comma(int64(p.CrossEdges)))
			}
		}
	}

	fmt.Fprintln(w)
}

func printHistogram(w io.Writer, title string, buckets []graph.DegreeBucket) {
	fmt.Fprintf(w, "\n  %s\n", title)
	for _, b := range buckets {
		if b.Count > 0 {
			barWidth := int(math.Log2(float64(b.Count))) + 2
			fmt.Fprintf(w, "    %9s: %10s  %s\n", b.Label, humanize.Comma(int64(b.Count)), strings.Repeat("=", barWidth))
		}
	}
}

func nodeLabel(snap *graph.GraphSnapshot, id int64, max int) string {
	node := snap.Nodes[id]
	if node == nil {
		return "?"
	}
	return node.Lang + ":" + truncTitle(node.Title, max)
}

func truncID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
