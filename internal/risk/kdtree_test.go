package risk

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func bruteForceWithin(entries []kdEntry, lat, lon, r float64) []int {
	var out []int
	for _, e := range entries {
		if e.lat >= lat-r && e.lat <= lat+r && e.lon >= lon-r && e.lon <= lon+r {
			out = append(out, e.idx)
		}
	}
	return out
}

func TestKDTree_Within(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	entries := make([]kdEntry, 200)
	for i := range entries {
		entries[i] = kdEntry{
			lat: 43.6 + rng.Float64()*0.1,
			lon: -79.4 + rng.Float64()*0.1,
			idx: i,
		}
	}

	// newKDTree sorts its input in place; query against an untouched copy.
	reference := make([]kdEntry, len(entries))
	copy(reference, entries)
	tree := newKDTree(entries)

	queries := []struct{ lat, lon, r float64 }{
		{43.65, -79.35, 0.01},
		{43.60, -79.40, 0.001},
		{43.70, -79.30, 0.05},
		{43.65, -79.35, 0},
	}
	for _, q := range queries {
		got := tree.within(q.lat, q.lon, q.r)
		want := bruteForceWithin(reference, q.lat, q.lon, q.r)

		assert.Equal(t, want, got)
	}
}

func TestKDTree_DuplicateCoordinates(t *testing.T) {
	entries := []kdEntry{
		{lat: 43.65, lon: -79.38, idx: 0},
		{lat: 43.65, lon: -79.38, idx: 1},
		{lat: 43.65, lon: -79.38, idx: 2},
	}
	tree := newKDTree(entries)

	got := tree.within(43.65, -79.38, 0.001)

	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestKDTree_Empty(t *testing.T) {
	tree := newKDTree(nil)

	assert.Empty(t, tree.within(43.65, -79.38, 1))
}
