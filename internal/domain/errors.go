package domain

import "fmt"

// FetchError marks a network/transport failure of one source. It degrades
// that source for the run after retries are exhausted; other sources proceed.
type FetchError struct {
	Source Source
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError marks a malformed unit (query expression, raw record). The
// offending unit is skipped and logged; siblings are unaffected.
type ParseError struct {
	Unit string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Unit, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StoreError marks an I/O failure against a partition. Fatal for the run;
// writes are append-scoped per partition so committed partitions stay intact.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
