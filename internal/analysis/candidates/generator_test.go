package candidates

import (
	"testing"

	"github.com/skalibog/mseg/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTracksRunningMinimum(t *testing.T) {
	// Якорь следует за скользящим минимумом: после падения 100->99 кандидат
	// стартует с бара 1, после падения до 98 следующий скан стартует с бара 3
	prices := []float64{100, 99, 101, 98, 103}
	localMinima := map[int]bool{1: true, 3: true}

	pool := NewGenerator([]float64{0.02}).Generate(prices, localMinima)
	require.Len(t, pool, 2)

	first := pool[0]
	assert.Equal(t, 1, first.StartIndex)
	assert.Equal(t, 2, first.EndIndex)
	assert.InDelta(t, 99.0, first.StartPrice, 1e-9)
	assert.InDelta(t, 101.0, first.EndPrice, 1e-9)
	assert.InDelta(t, (101.0-99.0)/99.0*100, first.PctChange, 1e-9)
	assert.True(t, first.IsLocalMin)

	second := pool[1]
	assert.Equal(t, 3, second.StartIndex)
	assert.Equal(t, 4, second.EndIndex)
	assert.InDelta(t, (103.0-98.0)/98.0*100, second.PctChange, 1e-9)
	assert.True(t, second.IsLocalMin)
}

func TestGenerateNoThresholdHit(t *testing.T) {
	// Монотонное падение: порог недостижим, кандидатов нет, скан завершается
	prices := []float64{100, 99, 98, 97, 96}
	pool := NewGenerator([]float64{0.02}).Generate(prices, nil)
	assert.Empty(t, pool)
}

func TestGeneratePoolsThresholdsInOrder(t *testing.T) {
	// Несколько порогов сканируются независимо, пул собирается по
	// возрастанию порога вне зависимости от порядка завершения горутин
	prices := []float64{100, 103, 106, 110}
	pool := NewGenerator([]float64{0.01, 0.05}).Generate(prices, nil)
	require.NotEmpty(t, pool)

	lastThreshold := pool[0].Threshold
	for _, c := range pool {
		assert.GreaterOrEqual(t, c.Threshold, lastThreshold)
		lastThreshold = c.Threshold
	}
}

func TestGenerateSkipsDegenerateAnchor(t *testing.T) {
	// Нулевая цена не может быть якорем: процент от нее неопределен
	prices := []float64{0, 1, 2}
	pool := NewGenerator([]float64{0.5}).Generate(prices, nil)

	require.Len(t, pool, 1)
	assert.Equal(t, 1, pool[0].StartIndex)
	assert.Equal(t, 2, pool[0].EndIndex)
}

func TestGenerateRevisitsRangeAcrossThresholds(t *testing.T) {
	// Один и тот же диапазон дает кандидатов для разных порогов —
	// это ожидаемое поведение, дубликаты схлопывает дедупликация
	prices := []float64{100, 105}
	pool := NewGenerator([]float64{0.02, 0.04}).Generate(prices, nil)

	require.Len(t, pool, 2)
	assert.Equal(t, pool[0].StartIndex, pool[1].StartIndex)
	assert.Equal(t, pool[0].EndIndex, pool[1].EndIndex)
	assert.NotEqual(t, pool[0].Threshold, pool[1].Threshold)
}

func TestDeduplicate(t *testing.T) {
	pool := []models.CandidateSegment{
		{Threshold: 0.0025, StartIndex: 0, EndIndex: 3, PctChange: 2.0},
		{Threshold: 0.005, StartIndex: 0, EndIndex: 3, PctChange: 2.0},
		{Threshold: 0.0025, StartIndex: 5, EndIndex: 8, PctChange: 1.5},
		{Threshold: 0.01, StartIndex: 5, EndIndex: 8, PctChange: 3.0},
	}

	dedup := Deduplicate(pool)
	require.Len(t, dedup, 2)

	// При точном равенстве остается первый встреченный (меньший порог)
	assert.Equal(t, 0.0025, dedup[0].Threshold)
	// При разных pct_change выигрывает больший
	assert.InDelta(t, 3.0, dedup[1].PctChange, 1e-9)
	assert.Equal(t, 0.01, dedup[1].Threshold)
}

func TestDeduplicateIdempotent(t *testing.T) {
	pool := []models.CandidateSegment{
		{StartIndex: 0, EndIndex: 2, PctChange: 1.0},
		{StartIndex: 0, EndIndex: 2, PctChange: 2.0},
		{StartIndex: 3, EndIndex: 5, PctChange: 1.0},
	}

	once := Deduplicate(pool)
	twice := Deduplicate(once)
	assert.Equal(t, once, twice)
}

func TestDeduplicateEmpty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}
