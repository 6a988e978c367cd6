package risk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/risk"
)

// countingField records every query so tests can assert sample counts.
type countingField struct {
	calls []domain.Point
	score float64
}

func (f *countingField) Fit(incidents []domain.Incident, bounds domain.BoundingBox) error {
	return nil
}

func (f *countingField) ScoreAt(lat, lon float64) (float64, error) {
	f.calls = append(f.calls, domain.Point{Lat: lat, Lon: lon})
	return f.score, nil
}

func straightEdge() []domain.Point {
	return []domain.Point{
		{Lat: testLat, Lon: testLon},
		{Lat: testLat + 0.001, Lon: testLon},
	}
}

func TestEdgeScorer_ScoreEdge(t *testing.T) {
	t.Run("straight edge gets sampleCount evenly spaced samples", func(t *testing.T) {
		field := &countingField{score: 2}
		scorer := risk.NewEdgeScorer(field, 3, 25, zap.NewNop())

		score, err := scorer.ScoreEdge(straightEdge(), domain.EdgeKey{U: 1, V: 2})

		require.NoError(t, err)
		assert.Equal(t, 2.0, score)
		require.Len(t, field.calls, 3)
		// Endpoints included, midpoint between them.
		assert.Equal(t, testLat, field.calls[0].Lat)
		assert.InDelta(t, testLat+0.0005, field.calls[1].Lat, 1e-12)
		assert.InDelta(t, testLat+0.001, field.calls[2].Lat, 1e-12)
	})

	t.Run("single sample means midpoint", func(t *testing.T) {
		field := &countingField{score: 1}
		scorer := risk.NewEdgeScorer(field, 1, 25, zap.NewNop())

		_, err := scorer.ScoreEdge(straightEdge(), domain.EdgeKey{U: 1, V: 2})

		require.NoError(t, err)
		require.Len(t, field.calls, 1)
		assert.InDelta(t, testLat+0.0005, field.calls[0].Lat, 1e-12)
	})

	t.Run("polyline sampled by interval including endpoints", func(t *testing.T) {
		field := &countingField{score: 1}
		scorer := risk.NewEdgeScorer(field, 3, 25, zap.NewNop())

		// Three vertices, ~111 m total; every 25 m gives int(111/25)+1 = 5 samples.
		geometry := []domain.Point{
			{Lat: testLat, Lon: testLon},
			{Lat: testLat + 0.0004, Lon: testLon},
			{Lat: testLat + 0.001, Lon: testLon},
		}

		_, err := scorer.ScoreEdge(geometry, domain.EdgeKey{U: 1, V: 2})

		require.NoError(t, err)
		require.Len(t, field.calls, 5)
		assert.Equal(t, testLat, field.calls[0].Lat)
		assert.InDelta(t, testLat+0.001, field.calls[4].Lat, 1e-9)
	})

	t.Run("rejects degenerate geometry", func(t *testing.T) {
		scorer := risk.NewEdgeScorer(&countingField{}, 3, 25, zap.NewNop())

		_, err := scorer.ScoreEdge([]domain.Point{{Lat: testLat, Lon: testLon}}, domain.EdgeKey{U: 1, V: 2})

		assert.Error(t, err)
	})
}

func TestEdgeScorer_Cache(t *testing.T) {
	field := &countingField{score: 3}
	scorer := risk.NewEdgeScorer(field, 3, 25, zap.NewNop())
	key := domain.EdgeKey{U: 1, V: 2}

	first, err := scorer.ScoreEdge(straightEdge(), key)
	require.NoError(t, err)
	sampled := len(field.calls)

	second, err := scorer.ScoreEdge(straightEdge(), key)
	require.NoError(t, err)

	// Identical value, no resampling.
	assert.Equal(t, first, second)
	assert.Equal(t, sampled, len(field.calls))
	assert.Equal(t, 1, scorer.CacheSize())

	// A different parallel edge between the same nodes is its own entry.
	_, err = scorer.ScoreEdge(straightEdge(), domain.EdgeKey{U: 1, V: 2, Key: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, scorer.CacheSize())
}

func TestEdgeScorer_Invalidate(t *testing.T) {
	field := &countingField{score: 3}
	scorer := risk.NewEdgeScorer(field, 3, 25, zap.NewNop())
	key := domain.EdgeKey{U: 1, V: 2}

	_, err := scorer.ScoreEdge(straightEdge(), key)
	require.NoError(t, err)
	require.Equal(t, 1, scorer.CacheSize())

	scorer.Invalidate()
	assert.Equal(t, 0, scorer.CacheSize())

	// Scores reflect the field again after invalidation.
	field.score = 7
	score, err := scorer.ScoreEdge(straightEdge(), key)
	require.NoError(t, err)
	assert.Equal(t, 7.0, score)
}
