package scanner

import (
	"context"
	"fmt"
	"time"

	"TopicTracker/internal/domain"
)

// Category describes a concrete listing endpoint provided by config.
type Category struct {
	Name string
	URL  string
}

// Request carries all parameters required to execute a fetch. Since is a
// lower bound on publication time; sources that only expose a current
// snapshot treat it as advisory.
type Request struct {
	Since      *time.Time
	SiteName   string
	Categories []Category
	Options    map[string]string
}

// Scanner captures a single source strategy (Hacker News, arXiv, etc.).
type Scanner interface {
	Name() string
	Source() domain.Source
	Scan(ctx context.Context, req Request) ([]domain.Item, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}
