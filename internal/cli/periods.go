package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"TopicTracker/internal/config"
	"TopicTracker/internal/infrastructure/storage"
	"TopicTracker/internal/logging"
)

type periodInfo struct {
	Period  string `json:"period"`
	Total   int    `json:"total"`
	Matched int    `json:"matched"`
}

// Execute lists stored periods with the two independent counters the
// dashboard distinguishes: total stored items and items with matches.
func (c *PeriodsCommand) Execute(args []string) error {
	cfg := config.Load(c.globals.Config)
	if c.globals.LogLevel != "" {
		cfg.Logging.Level = c.globals.LogLevel
	}
	logger := logging.New(cfg.Logging.Level)

	store, err := storage.NewPeriodStore(cfg.Store.Dir, logger.With("component", "store"))
	if err != nil {
		return err
	}

	periods, err := store.ListPeriods()
	if err != nil {
		return err
	}

	infos := make([]periodInfo, 0, len(periods))
	for _, p := range periods {
		total, matched, err := store.Counters(p)
		if err != nil {
			return err
		}
		infos = append(infos, periodInfo{Period: p.String(), Total: total, Matched: matched})
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	if len(infos) == 0 {
		fmt.Println("no stored periods")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  total=%d matched=%d\n", info.Period, info.Total, info.Matched)
	}
	return nil
}
