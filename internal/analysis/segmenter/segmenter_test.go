package segmenter

import (
	"testing"
	"time"

	"github.com/skalibog/mseg/internal/analysis/optimizer"
	"github.com/skalibog/mseg/internal/config"
	"github.com/skalibog/mseg/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func testConfig() config.SegmentationConfig {
	return config.SegmentationConfig{
		Thresholds:       []float64{0.02, 0.03},
		MaxDrawdown:      -0.02,
		ExtremaWindow:    2,
		IndicatorColumns: []string{"snr"},
	}
}

// series собирает серию свечей с часовым шагом
func series(closes []float64) []models.Candle {
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{
			Symbol:   "TESTUSDT",
			Close:    c,
			OpenTime: baseTime.Add(time.Duration(i) * time.Hour),
		}
	}
	return candles
}

// Восходящая пила: подъемы выше порога, откаты мельче предела просадки
func sawtooth(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 2.5*float64(i/2)
		if i%2 == 1 {
			closes[i] -= 1.5
		}
	}
	return closes
}

func TestRunProducesValidSegmentation(t *testing.T) {
	closes := sawtooth(20)
	candles := series(closes)
	n := len(candles)

	table := models.NewIndicatorTable()
	snr := make([]float64, n)
	for i := range snr {
		snr[i] = float64(i) * 0.1
	}
	table.SetColumn("snr", snr)

	result, err := NewSegmenter(testConfig()).Run(candles, table)
	require.NoError(t, err)
	require.NotEmpty(t, result.Optimal)
	require.NotEmpty(t, result.All)
	assert.GreaterOrEqual(t, result.CandidateCount, result.DedupCount)

	// Оптимальные сегменты упорядочены, не пересекаются и
	// удовлетворяют ограничению просадки
	for i, seg := range result.Optimal {
		assert.Equal(t, i, seg.SegmentID)
		assert.Equal(t, models.SegmentTypeOptimal, seg.SegmentType)
		require.NotNil(t, seg.IsLocalMin)
		assert.Less(t, seg.StartIndex, seg.EndIndex)
		assert.Equal(t, seg.EndIndex-seg.StartIndex+1, seg.SegmentLength)
		assert.Len(t, seg.Data, seg.SegmentLength)

		if i > 0 {
			prev := result.Optimal[i-1]
			assert.Greater(t, seg.StartIndex, prev.EndIndex)
			drawdown := (seg.StartPrice - prev.EndPrice) / prev.EndPrice * 100
			assert.Greater(t, drawdown, -2.0)
		}
	}

	// Негативные сегменты помечены неположительным изменением
	for _, seg := range result.Negative {
		assert.Equal(t, models.SegmentTypeNegative, seg.SegmentType)
		assert.Nil(t, seg.IsLocalMin)
		assert.LessOrEqual(t, seg.PctChange, 0.0)
	}

	// Объединенный список отсортирован по началу
	for i := 1; i < len(result.All); i++ {
		assert.GreaterOrEqual(t, result.All[i].StartIndex, result.All[i-1].StartIndex)
	}

	// Покрытие: от начала первого оптимального сегмента до конца серии
	// непокрытых баров нет (общие граничные бары допустимы)
	covered := make([]bool, n)
	for _, seg := range result.All {
		for i := seg.StartIndex; i <= seg.EndIndex; i++ {
			covered[i] = true
		}
	}
	for i := result.Optimal[0].StartIndex; i < n; i++ {
		assert.True(t, covered[i], "бар %d не покрыт разметкой", i)
	}

	// Выходные значения округлены до двух знаков
	for _, seg := range result.All {
		assert.Equal(t, models.Round(seg.PctChange, 2), seg.PctChange)
		assert.Equal(t, models.Round(seg.StartPrice, 2), seg.StartPrice)
		assert.Equal(t, models.Round(seg.EndPrice, 2), seg.EndPrice)
	}
}

func TestRunSeriesTooShort(t *testing.T) {
	result, err := NewSegmenter(testConfig()).Run(series([]float64{100}), nil)
	assert.ErrorIs(t, err, ErrSeriesTooShort)
	assert.Nil(t, result)
}

func TestRunNoCandidates(t *testing.T) {
	// Плоская серия не дает ни одного кандидата: пустой результат,
	// отличимый от сбоя
	flat := make([]float64, 10)
	for i := range flat {
		flat[i] = 100
	}

	result, err := NewSegmenter(testConfig()).Run(series(flat), nil)
	assert.ErrorIs(t, err, optimizer.ErrNoCandidates)
	assert.Nil(t, result)
}

func TestRunTimestampsFormatted(t *testing.T) {
	closes := sawtooth(20)
	result, err := NewSegmenter(testConfig()).Run(series(closes), nil)
	require.NoError(t, err)

	first := result.Optimal[0]
	start, parseErr := time.Parse(models.TimeLayout, first.StartTime)
	require.NoError(t, parseErr)
	assert.Equal(t, baseTime.Add(time.Duration(first.StartIndex)*time.Hour), start)
}
