package models

import (
	"math"

	"github.com/shopspring/decimal"
)

// TimeLayout — формат времени в выходных артефактах
const TimeLayout = "2006-01-02 15:04:05"

// Round округляет значение до заданного числа знаков после запятой.
// Используется при формировании выходных записей: цены и проценты до двух
// знаков, ячейки индикаторов до четырех.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Snapshot формирует построчный снимок индикаторных колонок для баров
// from..to включительно. Отсутствующие колонки дают null в JSON.
func (t *IndicatorTable) Snapshot(columns []string, from, to int) [][]*float64 {
	rows := make([][]*float64, 0, to-from+1)
	for i := from; i <= to; i++ {
		row := make([]*float64, len(columns))
		for c, name := range columns {
			if v, ok := t.Value(name, i); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
				rounded := Round(v, 4)
				row[c] = &rounded
			}
		}
		rows = append(rows, row)
	}
	return rows
}
