package models

import (
	"time"
)

// Candle представляет свечу
type Candle struct {
	Symbol    string
	Interval  string
	OpenTime  time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	CloseTime time.Time
}

// Типы сегментов в итоговой разметке
const (
	SegmentTypeOptimal  = "optimal"
	SegmentTypeNegative = "negative"
)

// CandidateSegment представляет кандидата восходящего движения,
// найденного сканером до оптимизации
type CandidateSegment struct {
	Threshold  float64
	StartIndex int
	EndIndex   int
	StartPrice float64
	EndPrice   float64
	PctChange  float64 // процент, всегда положительный
	IsLocalMin bool    // начало совпадает с локальным минимумом
}

// Length возвращает длину кандидата в барах (включая обе границы)
func (c CandidateSegment) Length() int {
	return c.EndIndex - c.StartIndex + 1
}

// Segment представляет итоговый сегмент разметки (оптимальный или негативный).
// Формат полей совпадает с JSON-артефактами, которые читают внешние потребители.
type Segment struct {
	SegmentID     int          `json:"segment_id"`
	SegmentType   string       `json:"segment_type"`
	StartIndex    int          `json:"start_index"`
	EndIndex      int          `json:"end_index"`
	StartTime     string       `json:"start_time"`
	EndTime       string       `json:"end_time"`
	StartPrice    float64      `json:"start_price"`
	EndPrice      float64      `json:"end_price"`
	PctChange     float64      `json:"pct_change"`
	SegmentLength int          `json:"segment_length"`
	Columns       []string     `json:"columns"`
	Data          [][]*float64 `json:"data"`
	// Заполняется только для оптимальных сегментов
	IsLocalMin *bool `json:"is_local_min,omitempty"`
}

// IndicatorTable хранит значения индикаторных колонок по каждому бару серии.
// Ядро не интерпретирует значения, только прокладывает их в снимки сегментов.
type IndicatorTable struct {
	Columns []string
	values  map[string][]float64
}

// NewIndicatorTable создает пустую таблицу индикаторов
func NewIndicatorTable() *IndicatorTable {
	return &IndicatorTable{
		values: make(map[string][]float64),
	}
}

// SetColumn добавляет колонку со значениями по всем барам
func (t *IndicatorTable) SetColumn(name string, values []float64) {
	if _, ok := t.values[name]; !ok {
		t.Columns = append(t.Columns, name)
	}
	t.values[name] = values
}

// Value возвращает значение колонки на баре i.
// Второй результат false, если колонка отсутствует или индекс вне диапазона.
func (t *IndicatorTable) Value(name string, i int) (float64, bool) {
	if t == nil {
		return 0, false
	}
	vals, ok := t.values[name]
	if !ok || i < 0 || i >= len(vals) {
		return 0, false
	}
	return vals[i], true
}

// HasColumn сообщает, есть ли колонка в таблице
func (t *IndicatorTable) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.values[name]
	return ok
}
