package query

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is one entry of a human-editable query set file.
type Definition struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
	Enabled    *bool  `yaml:"enabled"`
	Scope      string `yaml:"scope"`
}

// LoadDir reads every query set file (*.yaml, *.yml) in dir and returns the
// enabled, compiled queries. A malformed entry or file is skipped with a
// warning; it never fails the run. The returned count is the number of
// skipped entries.
func LoadDir(dir string, logger *slog.Logger) ([]Query, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("read queries dir %s: %w", dir, err)
	}

	var (
		queries []Query
		skipped int
		names   = map[string]string{}
	)

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			warn(logger, "skip unreadable query file", "file", path, "error", err)
			skipped++
			continue
		}

		var defs []Definition
		if err := yaml.Unmarshal(raw, &defs); err != nil {
			warn(logger, "skip malformed query file", "file", path, "error", err)
			skipped++
			continue
		}

		for _, def := range defs {
			q, err := compileDefinition(def)
			if err != nil {
				warn(logger, "skip query entry", "file", path, "query", def.Name, "error", err)
				skipped++
				continue
			}
			if prev, ok := names[q.Name]; ok {
				warn(logger, "skip duplicate query name", "file", path, "query", q.Name, "first_seen", prev)
				skipped++
				continue
			}
			names[q.Name] = path
			if !q.Enabled {
				continue
			}
			queries = append(queries, q)
		}
	}

	return queries, skipped, nil
}

func compileDefinition(def Definition) (Query, error) {
	if strings.TrimSpace(def.Name) == "" {
		return Query{}, fmt.Errorf("missing name")
	}
	scope, err := ParseScope(def.Scope)
	if err != nil {
		return Query{}, err
	}
	enabled := true
	if def.Enabled != nil {
		enabled = *def.Enabled
	}
	return New(def.Name, def.Expression, enabled, scope)
}

func warn(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}
