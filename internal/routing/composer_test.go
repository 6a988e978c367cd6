package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/routing"
)

func TestNewWeightComposer(t *testing.T) {
	tests := []struct {
		name           string
		distanceWeight float64
		crimeWeight    float64
		penaltyScale   float64
		wantErr        bool
	}{
		{"valid split", 0.7, 0.3, 1.0, false},
		{"pure distance", 1.0, 0.0, 1.0, false},
		{"weights not summing to one", 0.7, 0.7, 1.0, true},
		{"negative weight", -0.2, 1.2, 1.0, true},
		{"zero distance weight", 0.0, 1.0, 1.0, true},
		{"negative penalty scale", 0.7, 0.3, -1.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := routing.NewWeightComposer(tt.distanceWeight, tt.crimeWeight, tt.penaltyScale, false, 200)

			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidWeights)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWeightComposer_Compose(t *testing.T) {
	t.Run("zero risk prices at pure length", func(t *testing.T) {
		c, err := routing.NewWeightComposer(0.7, 0.3, 1.0, false, 200)
		require.NoError(t, err)

		assert.Equal(t, 100.0, c.Compose(100, 0))
	})

	t.Run("zero crime weight prices at pure length regardless of risk", func(t *testing.T) {
		c, err := routing.NewWeightComposer(1.0, 0.0, 1.0, false, 200)
		require.NoError(t, err)

		assert.Equal(t, 100.0, c.Compose(100, 50))
	})

	t.Run("risk adds multiplicative penalty", func(t *testing.T) {
		c, err := routing.NewWeightComposer(0.7, 0.3, 1.0, false, 200)
		require.NoError(t, err)

		// weight = 100 * (1 + 2 * (0.3/0.7))
		assert.InDelta(t, 100*(1+2*(0.3/0.7)), c.Compose(100, 2), 1e-9)
	})

	t.Run("composed weight never drops below length", func(t *testing.T) {
		c, err := routing.NewWeightComposer(0.5, 0.5, 2.0, false, 200)
		require.NoError(t, err)

		for _, risk := range []float64{0, 0.1, 1, 10, 100} {
			for _, length := range []float64{1, 50, 1000} {
				assert.GreaterOrEqual(t, c.Compose(length, risk), length)
			}
		}
	})

	t.Run("adaptive damps penalty on short edges only", func(t *testing.T) {
		plain, err := routing.NewWeightComposer(0.7, 0.3, 1.0, false, 200)
		require.NoError(t, err)
		adaptive, err := routing.NewWeightComposer(0.7, 0.3, 1.0, true, 200)
		require.NoError(t, err)

		// Below the threshold the adaptive penalty shrinks.
		assert.Less(t, adaptive.Compose(50, 2), plain.Compose(50, 2))
		assert.Greater(t, adaptive.Compose(50, 2), 50.0)

		// At and above the threshold both agree.
		assert.Equal(t, plain.Compose(200, 2), adaptive.Compose(200, 2))
		assert.Equal(t, plain.Compose(500, 2), adaptive.Compose(500, 2))
	})
}

func TestWeightComposer_ComposeAll(t *testing.T) {
	graph := domain.NewStreetGraph()
	graph.AddNode(&domain.Node{ID: 1, Lat: 43.65, Lon: -79.38})
	graph.AddNode(&domain.Node{ID: 2, Lat: 43.651, Lon: -79.38})
	graph.AddEdge(&domain.Edge{U: 1, V: 2, LengthM: 100})
	graph.AddEdge(&domain.Edge{U: 2, V: 1, LengthM: 100})

	c, err := routing.NewWeightComposer(0.7, 0.3, 1.0, false, 200)
	require.NoError(t, err)

	riskByEdge := map[domain.EdgeKey]float64{
		{U: 1, V: 2}: 2,
		// reverse edge deliberately unscored
	}

	weights := c.ComposeAll(graph, riskByEdge)

	require.Len(t, weights, 2)
	assert.Greater(t, weights[domain.EdgeKey{U: 1, V: 2}], 100.0)
	assert.Equal(t, 100.0, weights[domain.EdgeKey{U: 2, V: 1}])

	// The graph itself stays untouched.
	for _, e := range graph.Edges {
		assert.Equal(t, 100.0, e.LengthM)
	}
}
