package loader

import (
	"github.com/agebench/agebench/age"
)

// ValidateLabel rejects any label string that is not a safe identifier.
// Labels cross into raw identifier interpolation in both Cypher and SQL,
// so this runs before any I/O in every strategy.
func ValidateLabel(label string) error {
	if !age.ValidIdent(label) {
		return &ValidationError{Label: label}
	}
	return nil
}

func validateNodeLabels(nodes []Node) error {
	for _, n := range nodes {
		if err := ValidateLabel(n.Label); err != nil {
			return err
		}
	}
	return nil
}

func validateEdgeLabels(edges []Edge) error {
	for _, e := range edges {
		if err := ValidateLabel(e.Label); err != nil {
			return err
		}
	}
	return nil
}

// groupNodesByLabel groups nodes by label, returning labels in first-seen
// order so processing is deterministic.
func groupNodesByLabel(nodes []Node) ([]string, map[string][]Node) {
	var labels []string
	grouped := make(map[string][]Node)
	for _, n := range nodes {
		if _, ok := grouped[n.Label]; !ok {
			labels = append(labels, n.Label)
		}
		grouped[n.Label] = append(grouped[n.Label], n)
	}
	return labels, grouped
}

// groupEdgesByLabel groups edges by label in first-seen order.
func groupEdgesByLabel(edges []Edge) ([]string, map[string][]Edge) {
	var labels []string
	grouped := make(map[string][]Edge)
	for _, e := range edges {
		if _, ok := grouped[e.Label]; !ok {
			labels = append(labels, e.Label)
		}
		grouped[e.Label] = append(grouped[e.Label], e)
	}
	return labels, grouped
}

// checkDuplicateIDs detects logical ids appearing more than once. It runs
// over the full batch, including any record later used to seed a new
// label, so the first record of a label gets the same validation as the
// rest.
func checkDuplicateIDs(entity string, ids []string) error {
	seen := make(map[string]int, len(ids))
	var dupes []string
	for _, id := range ids {
		seen[id]++
		if seen[id] == 2 {
			dupes = append(dupes, id)
		}
	}
	if len(dupes) > 0 {
		return newIntegrityError(IntegrityDuplicate, entity, dupes)
	}
	return nil
}

func nodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func edgeIDs(edges []Edge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID
	}
	return ids
}
