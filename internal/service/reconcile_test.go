package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	cases := []struct {
		name            string
		current, target []uint64
		add, remove     []uint64
	}{
		{"empty both", nil, nil, []uint64{}, []uint64{}},
		{"add all", nil, []uint64{3, 1, 2}, []uint64{1, 2, 3}, []uint64{}},
		{"remove all", []uint64{2, 1}, []uint64{}, []uint64{}, []uint64{1, 2}},
		{"mixed", []uint64{1, 2, 3}, []uint64{2, 3, 4, 5}, []uint64{4, 5}, []uint64{1}},
		{"same set", []uint64{5, 7}, []uint64{7, 5}, []uint64{}, []uint64{}},
		{"duplicates in target", []uint64{1}, []uint64{2, 2, 1}, []uint64{2}, []uint64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			add, remove := Reconcile(tc.current, tc.target)
			assert.Equal(t, tc.add, add)
			assert.Equal(t, tc.remove, remove)
		})
	}
}

func TestReconcile_DisjointAndApplies(t *testing.T) {
	current := []uint64{1, 4, 6, 9}
	target := []uint64{2, 4, 9, 10}
	add, remove := Reconcile(current, target)

	for _, id := range add {
		assert.NotContains(t, remove, id)
	}

	post := map[uint64]bool{}
	for _, id := range current {
		post[id] = true
	}
	for _, id := range add {
		post[id] = true
	}
	for _, id := range remove {
		delete(post, id)
	}
	got := make([]uint64, 0, len(post))
	for id := range post {
		got = append(got, id)
	}
	assert.ElementsMatch(t, target, got)
}

func TestNormalizeIDs(t *testing.T) {
	ids, ok := normalizeIDs([]uint64{3, 1, 3, 2})
	assert.True(t, ok)
	assert.Equal(t, []uint64{1, 2, 3}, ids)

	_, ok = normalizeIDs([]uint64{1, 0})
	assert.False(t, ok)

	ids, ok = normalizeIDs(nil)
	assert.True(t, ok)
	assert.Equal(t, []uint64{}, ids)
}
