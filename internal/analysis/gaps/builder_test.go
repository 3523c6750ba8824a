package gaps

import (
	"testing"
	"time"

	"github.com/skalibog/mseg/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// series собирает серию свечей с часовым шагом
func series(closes ...float64) []models.Candle {
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{
			Close:    c,
			OpenTime: baseTime.Add(time.Duration(i) * time.Hour),
		}
	}
	return candles
}

func optimalSegment(start, end int) models.Segment {
	return models.Segment{
		SegmentType: models.SegmentTypeOptimal,
		StartIndex:  start,
		EndIndex:    end,
	}
}

func TestBuildGapBetweenSegments(t *testing.T) {
	candles := series(100, 101, 102, 99, 98, 97, 96, 103, 104, 105)
	optimal := []models.Segment{optimalSegment(0, 2), optimalSegment(6, 8)}

	negatives := NewBuilder(nil).Build(optimal, candles, nil)
	require.Len(t, negatives, 2)

	// Промежуток между звеньями заканчивается на стартовом баре
	// следующего оптимального сегмента
	middle := negatives[0]
	assert.Equal(t, 0, middle.SegmentID)
	assert.Equal(t, models.SegmentTypeNegative, middle.SegmentType)
	assert.Equal(t, 3, middle.StartIndex)
	assert.Equal(t, 6, middle.EndIndex)
	assert.InDelta(t, 102.0, middle.StartPrice, 1e-9) // цена конца предыдущего звена
	assert.InDelta(t, 96.0, middle.EndPrice, 1e-9)
	assert.Equal(t, 4, middle.SegmentLength)
	assert.Equal(t, "2024-03-01 03:00:00", middle.StartTime)
	assert.Equal(t, "2024-03-01 06:00:00", middle.EndTime)

	// Хвостовой промежуток до конца серии
	tail := negatives[1]
	assert.Equal(t, 1, tail.SegmentID)
	assert.Equal(t, 9, tail.StartIndex)
	assert.Equal(t, 9, tail.EndIndex)
	assert.Equal(t, 1, tail.SegmentLength)
}

func TestBuildNoLeadingGap(t *testing.T) {
	// Перед первым оптимальным сегментом промежуток не эмитится,
	// даже если сегмент начинается не с нулевого бара
	candles := series(100, 99, 98, 101, 102, 103)
	optimal := []models.Segment{optimalSegment(2, 5)}

	negatives := NewBuilder(nil).Build(optimal, candles, nil)
	assert.Empty(t, negatives)
}

func TestBuildTrailingGapOnly(t *testing.T) {
	candles := series(100, 101, 102, 101, 100)
	optimal := []models.Segment{optimalSegment(0, 2)}

	negatives := NewBuilder(nil).Build(optimal, candles, nil)
	require.Len(t, negatives, 1)
	assert.Equal(t, 3, negatives[0].StartIndex)
	assert.Equal(t, 4, negatives[0].EndIndex)
}

func TestBuildForcesNegativeSign(t *testing.T) {
	// Промежуток с ростом цены все равно помечается отрицательным изменением
	candles := series(100, 101, 110, 120, 130)
	optimal := []models.Segment{optimalSegment(0, 1)}

	negatives := NewBuilder(nil).Build(optimal, candles, nil)
	require.Len(t, negatives, 1)
	assert.LessOrEqual(t, negatives[0].PctChange, 0.0)
	// Знак перевернут, модуль сохранен: (130-101)/101*100 = 28.71
	assert.InDelta(t, -28.71, negatives[0].PctChange, 1e-9)
}

func TestBuildEmptyPath(t *testing.T) {
	candles := series(100, 101, 102)
	negatives := NewBuilder(nil).Build(nil, candles, nil)
	assert.Empty(t, negatives)
}

func TestBuildSnapshotColumns(t *testing.T) {
	candles := series(100, 101, 99, 98, 97)
	optimal := []models.Segment{optimalSegment(0, 1)}

	table := models.NewIndicatorTable()
	table.SetColumn("snr", []float64{0.11111, 0.22222, 0.33333, 0.44444, 0.55555})

	columns := []string{"snr", "cycle_stage"}
	negatives := NewBuilder(columns).Build(optimal, candles, table)
	require.Len(t, negatives, 1)

	gap := negatives[0]
	assert.Equal(t, columns, gap.Columns)
	// Снимок покрывает каждый бар промежутка
	require.Len(t, gap.Data, 3)

	// Присутствующая колонка округлена до четырех знаков
	require.NotNil(t, gap.Data[0][0])
	assert.InDelta(t, 0.3333, *gap.Data[0][0], 1e-9)
	// Отсутствующая колонка дает null
	assert.Nil(t, gap.Data[0][1])
}
