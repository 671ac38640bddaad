package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config   string `long:"config" description:"Path to config file" default:""`
	LogLevel string `long:"log-level" description:"Override log level"`
	Version  bool   `long:"version" description:"Show version and exit"`
}

// RunCommand — execute one fetch-filter-persist run.
type RunCommand struct {
	HNOnly    bool   `long:"hn-only" description:"Collect from Hacker News only"`
	ArxivOnly bool   `long:"arxiv-only" description:"Collect from arXiv only"`
	Since     string `long:"since" description:"Publication lower bound for backfill (YYYY-MM-DD); advisory for Hacker News"`

	globals *GlobalFlags
	version string
}

// RefilterCommand — re-run admission and classification for one period.
type RefilterCommand struct {
	Period string `long:"period" description:"Period to re-filter, e.g. 2024-W05 (required)"`
	Reset  bool   `long:"reset" description:"Rebuild match sets instead of unioning with stored ones"`

	globals *GlobalFlags
	version string
}

// PeriodsCommand — list stored periods with their counters.
type PeriodsCommand struct {
	JSON bool `long:"json" description:"Output in JSON format"`

	globals *GlobalFlags
	version string
}
