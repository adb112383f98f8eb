package graph

// Report is the full analysis result
type Report struct {
	Topology   *TopologyReport `json:"topology"`
	Categories *CategoryReport `json:"categories"`
	Bridges    *BridgeReport   `json:"bridges,omitempty"`
}

// AnalyzerConfig holds analysis parameters
type AnalyzerConfig struct {
	HubThreshold int
	TopN         int
	// Bridges enables articulation point and bridge search, which holds a
	// second copy of the adjacency in memory.
	Bridges bool
	// EdgeTypes restricts topology and bridges to these edge types when set.
	EdgeTypes []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *AnalyzerConfig {
	return &AnalyzerConfig{
		HubThreshold: 100,
		TopN:         10,
	}
}

// Analyze runs all analyses enabled by config
func Analyze(snap *GraphSnapshot, config *AnalyzerConfig) *Report {
	report := &Report{Categories: ComputeCategories(snap)}
	if len(config.EdgeTypes) > 0 {
		snap = snap.FilterEdgeTypes(config.EdgeTypes...)
	}
	report.Topology = ComputeTopology(snap, config.HubThreshold, config.TopN)
	if config.Bridges {
		report.Bridges = ComputeBridges(snap)
	}
	return report
}
