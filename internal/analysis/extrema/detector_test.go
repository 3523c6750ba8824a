package extrema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		prices     []float64
		window     int
		wantMinima []int
		wantMaxima []int
	}{
		{
			name:       "впадина и вершина внутри серии",
			prices:     []float64{5, 1, 4, 7, 3},
			window:     1,
			wantMinima: []int{1},
			wantMaxima: []int{3},
		},
		{
			name:       "края серии не классифицируются",
			prices:     []float64{1, 2, 3, 4, 5},
			window:     2,
			wantMinima: nil,
			wantMaxima: nil,
		},
		{
			name:       "плато засчитывается с обеих сторон",
			prices:     []float64{3, 1, 1, 3},
			window:     1,
			wantMinima: []int{1, 2},
			wantMaxima: nil,
		},
		{
			name:       "широкое окно ужимается на короткой серии",
			prices:     []float64{5, 4, 1, 4, 5},
			window:     10,
			wantMinima: []int{2},
			wantMaxima: nil,
		},
		{
			name:       "серия из двух баров пуста",
			prices:     []float64{1, 2},
			window:     3,
			wantMinima: nil,
			wantMaxima: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minima, maxima := NewDetector(tt.window).Detect(tt.prices)

			assert.Len(t, minima, len(tt.wantMinima))
			for _, idx := range tt.wantMinima {
				assert.True(t, minima[idx], "ожидался минимум на баре %d", idx)
			}

			assert.Len(t, maxima, len(tt.wantMaxima))
			for _, idx := range tt.wantMaxima {
				assert.True(t, maxima[idx], "ожидался максимум на баре %d", idx)
			}
		})
	}
}

func TestDetectPlateauBothExtrema(t *testing.T) {
	// Константная серия: каждый внутренний бар одновременно минимум и максимум
	prices := []float64{2, 2, 2, 2, 2}
	minima, maxima := NewDetector(1).Detect(prices)

	require.Len(t, minima, 3)
	require.Len(t, maxima, 3)
	for i := 1; i <= 3; i++ {
		assert.True(t, minima[i])
		assert.True(t, maxima[i])
	}
}
