package gaps

import (
	"github.com/skalibog/mseg/pkg/models"
)

// Builder строит негативные сегменты, заполняющие промежутки между
// оптимальными сегментами выбранного пути
type Builder struct {
	columns []string
}

// NewBuilder создает новый построитель негативных сегментов
func NewBuilder(columns []string) *Builder {
	return &Builder{
		columns: columns,
	}
}

// Build эмитит по одному негативному сегменту на каждый максимальный диапазон
// баров, не занятый оптимальным сегментом: между соседними звеньями пути и
// после последнего звена до конца серии. Ведущий промежуток перед первым
// звеном не эмитится — так размечал эталон, внешние потребители на это
// поведение завязаны. Негативный сегмент заканчивается на стартовом баре
// следующего оптимального, граничный бар у них общий.
func (b *Builder) Build(optimal []models.Segment, candles []models.Candle, table *models.IndicatorTable) []models.Segment {
	var negatives []models.Segment

	prevEnd := -1
	var prevPrice float64

	for _, seg := range optimal {
		if prevEnd >= 0 && prevEnd+1 < seg.StartIndex {
			negatives = append(negatives, b.makeGap(len(negatives), prevEnd, seg.StartIndex, prevPrice, candles, table))
		}
		prevEnd = seg.EndIndex
		prevPrice = candles[seg.EndIndex].Close
	}

	// Хвостовой промежуток после последнего звена
	if prevEnd >= 0 && prevEnd < len(candles)-1 {
		negatives = append(negatives, b.makeGap(len(negatives), prevEnd, len(candles)-1, prevPrice, candles, table))
	}

	return negatives
}

// makeGap собирает негативный сегмент для баров (prevEnd, endIdx]
func (b *Builder) makeGap(id, prevEnd, endIdx int, startPrice float64, candles []models.Candle, table *models.IndicatorTable) models.Segment {
	endPrice := candles[endIdx].Close

	// Сегмент негативный по определению: положительная арифметика
	// переворачивается знаком, нулевая опорная цена дает ноль
	var pctChange float64
	if startPrice > 0 {
		pctChange = (endPrice - startPrice) / startPrice * 100
	}
	if pctChange > 0 {
		pctChange = -pctChange
	}

	startIdx := prevEnd + 1

	return models.Segment{
		SegmentID:     id,
		SegmentType:   models.SegmentTypeNegative,
		StartIndex:    startIdx,
		EndIndex:      endIdx,
		StartTime:     candles[startIdx].OpenTime.Format(models.TimeLayout),
		EndTime:       candles[endIdx].OpenTime.Format(models.TimeLayout),
		StartPrice:    models.Round(startPrice, 2),
		EndPrice:      models.Round(endPrice, 2),
		PctChange:     models.Round(pctChange, 2),
		SegmentLength: endIdx - prevEnd,
		Columns:       append([]string(nil), b.columns...),
		Data:          table.Snapshot(b.columns, startIdx, endIdx),
	}
}
