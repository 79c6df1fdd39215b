package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOrder(t *testing.T) {
	all := All()
	require.Len(t, all, 4)

	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name()
	}
	// Slowest to fastest.
	assert.Equal(t, []string{"individual-merge", "unwind-merge", "copy-staged", "direct-sql"}, names)

	for _, s := range all {
		assert.NotEmpty(t, s.Description(), s.Name())
	}
}

func TestByName(t *testing.T) {
	s, ok := ByName("direct-sql")
	require.True(t, ok)
	assert.Equal(t, "direct-sql", s.Name())

	_, ok = ByName("nonexistent")
	assert.False(t, ok)
}

// Label validation happens before any database work, so a batch with a
// bad label fails even with no transaction at all.
func TestInvalidLabelRejectedBeforeAnyIO(t *testing.T) {
	ctx := context.Background()
	nodes := []Node{{ID: "n1", Label: `Person"; DROP TABLE users; --`}}
	edges := []Edge{{ID: "e1", Label: "1starts_with_digit", StartID: "n1", EndID: "n2"}}

	for _, strategy := range All() {
		t.Run(strategy.Name(), func(t *testing.T) {
			_, err := strategy.InsertNodes(ctx, nil, "g", nodes)
			assert.ErrorIs(t, err, ErrInvalidLabel)

			_, err = strategy.InsertEdges(ctx, nil, "g", edges)
			assert.ErrorIs(t, err, ErrInvalidLabel)
		})
	}
}

// Duplicate logical ids are detected in memory over the full batch,
// before staging, for every strategy, including the record that would
// seed a brand-new label.
func TestDuplicateIDsRejectedBeforeAnyIO(t *testing.T) {
	ctx := context.Background()
	nodes := []Node{
		{ID: "n1", Label: "Person", Properties: Properties{"v": 1}},
		{ID: "n1", Label: "Person", Properties: Properties{"v": 2}},
	}

	for _, strategy := range All() {
		t.Run(strategy.Name(), func(t *testing.T) {
			_, err := strategy.InsertNodes(ctx, nil, "g", nodes)
			assert.ErrorIs(t, err, ErrDuplicateID)
		})
	}
}

// An id reused across two labels is still a duplicate: logical ids are
// unique per batch, not per label, and every strategy enforces that the
// same way.
func TestDuplicateIDsAcrossLabelsRejected(t *testing.T) {
	ctx := context.Background()
	nodes := []Node{
		{ID: "n1", Label: "Person", Properties: Properties{"v": 1}},
		{ID: "n1", Label: "Company", Properties: Properties{"v": 2}},
	}
	edges := []Edge{
		{ID: "e1", Label: "KNOWS", StartID: "n1", EndID: "n2"},
		{ID: "e1", Label: "LIKES", StartID: "n2", EndID: "n1"},
	}

	for _, strategy := range All() {
		t.Run(strategy.Name(), func(t *testing.T) {
			_, err := strategy.InsertNodes(ctx, nil, "g", nodes)
			assert.ErrorIs(t, err, ErrDuplicateID)

			_, err = strategy.InsertEdges(ctx, nil, "g", edges)
			assert.ErrorIs(t, err, ErrDuplicateID)
		})
	}
}
