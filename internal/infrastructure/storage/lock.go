package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"TopicTracker/internal/domain"
)

// lockPartition takes an advisory per-partition lock so two overlapping runs
// cannot interleave writes to the same period. The lock file is created with
// O_EXCL; a concurrent holder surfaces as a StoreError rather than a
// corrupted partition.
func (s *PeriodStore) lockPartition(p domain.Period) (release func(), err error) {
	path := filepath.Join(s.dir, p.String()+".lock")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, &domain.StoreError{
				Op:  "lock " + p.String(),
				Err: fmt.Errorf("partition locked by another run (%s)", path),
			}
		}
		return nil, &domain.StoreError{Op: "lock " + p.String(), Err: err}
	}

	_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
	_ = f.Close()

	return func() {
		if err := os.Remove(path); err != nil && s.logger != nil {
			s.logger.Warn("release partition lock", "period", p.String(), "error", err)
		}
	}, nil
}
