package loader

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidLabel marks label or identifier syntax rejected before
	// any I/O.
	ErrInvalidLabel = errors.New("invalid label")

	// ErrDuplicateID marks a batch containing the same logical id more
	// than once.
	ErrDuplicateID = errors.New("duplicate id in batch")

	// ErrOrphanedEdge marks an edge whose start or end logical id does
	// not resolve to any existing node.
	ErrOrphanedEdge = errors.New("orphaned edge reference")

	// ErrLabelCreateFailed marks an unexpected failure to materialize a
	// new label through Cypher.
	ErrLabelCreateFailed = errors.New("label creation failed")
)

// maxReportedIDs caps how many offending logical ids an integrity error
// enumerates; the remainder is reported as an overflow count.
const maxReportedIDs = 5

// ValidationError reports label or graph-name syntax rejected before any
// database work. It unwraps to ErrInvalidLabel.
type ValidationError struct {
	Label string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid label %q: must be alphanumeric/underscore, start with letter/underscore, max 63 chars", e.Label)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidLabel }

// IntegrityKind distinguishes the integrity failures a batch can trigger.
type IntegrityKind int

const (
	// IntegrityDuplicate is a logical id appearing more than once in a batch.
	IntegrityDuplicate IntegrityKind = iota

	// IntegrityOrphan is an edge endpoint that resolves to no node.
	IntegrityOrphan
)

// IntegrityError reports duplicate logical ids or orphaned edge
// references, detected after staging and before commit. IDs carries up
// to maxReportedIDs offending logical ids in sorted order; Overflow
// counts the rest. It unwraps to ErrDuplicateID or ErrOrphanedEdge
// according to Kind.
type IntegrityError struct {
	Kind     IntegrityKind
	Entity   string // "node" or "edge"
	IDs      []string
	Overflow int
}

func (e *IntegrityError) Error() string {
	suffix := ""
	if e.Overflow > 0 {
		suffix = fmt.Sprintf(" (and %d more)", e.Overflow)
	}
	switch e.Kind {
	case IntegrityOrphan:
		return fmt.Sprintf("orphaned edges reference non-existent nodes: %s%s",
			strings.Join(e.IDs, ", "), suffix)
	default:
		return fmt.Sprintf("duplicate %s IDs in batch: %s%s",
			e.Entity, strings.Join(e.IDs, ", "), suffix)
	}
}

func (e *IntegrityError) Unwrap() error {
	if e.Kind == IntegrityOrphan {
		return ErrOrphanedEdge
	}
	return ErrDuplicateID
}

// SchemaError reports a label that could not be materialized through the
// store's own label-creation path. It unwraps to ErrLabelCreateFailed.
type SchemaError struct {
	Label string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to create label %q: %v", e.Label, e.Err)
	}
	return fmt.Sprintf("failed to create label %q", e.Label)
}

func (e *SchemaError) Unwrap() error { return ErrLabelCreateFailed }

// newIntegrityError builds an IntegrityError from the full set of
// offending ids, sorting and capping them.
func newIntegrityError(kind IntegrityKind, entity string, ids []string) *IntegrityError {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	overflow := 0
	if len(sorted) > maxReportedIDs {
		overflow = len(sorted) - maxReportedIDs
		sorted = sorted[:maxReportedIDs]
	}
	return &IntegrityError{Kind: kind, Entity: entity, IDs: sorted, Overflow: overflow}
}
