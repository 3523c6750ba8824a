package series

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/skalibog/mseg/pkg/models"
)

// Служебные колонки CSV, не попадающие в таблицу индикаторов
var reservedColumns = map[string]bool{
	"time":     true,
	"datetime": true,
	"open":     true,
	"high":     true,
	"low":      true,
	"close":    true,
	"volume":   true,
}

// LoadCSV читает ценовую серию из CSV-файла. Обязательна только колонка
// close; time (unix) или datetime дают метки времени, все прочие числовые
// колонки становятся индикаторными и попадают в снимки сегментов как есть.
func LoadCSV(path, symbol, interval string) ([]models.Candle, *models.IndicatorTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка открытия CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, ErrEmpty
	}

	header := records[0]
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}

	closeIdx, ok := colIdx["close"]
	if !ok {
		return nil, nil, ErrNoClose
	}

	rows := records[1:]
	candles := make([]models.Candle, 0, len(rows))
	extra := make(map[string][]float64)

	for rowNum, row := range rows {
		closePrice, err := strconv.ParseFloat(row[closeIdx], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: строка %d, значение %q", ErrBadPrice, rowNum+2, row[closeIdx])
		}

		candle := models.Candle{
			Symbol:   symbol,
			Interval: interval,
			Close:    closePrice,
			OpenTime: parseRowTime(row, colIdx),
		}
		candle.Open = optionalField(row, colIdx, "open", closePrice)
		candle.High = optionalField(row, colIdx, "high", closePrice)
		candle.Low = optionalField(row, colIdx, "low", closePrice)
		candle.Volume = optionalField(row, colIdx, "volume", 0)
		candles = append(candles, candle)

		// Индикаторные колонки: нечитаемые ячейки становятся NaN
		// и дадут null в снимках
		for name, idx := range colIdx {
			if reservedColumns[name] || idx >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(row[idx], 64)
			if err != nil {
				v = math.NaN()
			}
			extra[name] = append(extra[name], v)
		}
	}

	if len(candles) == 0 {
		return nil, nil, ErrEmpty
	}

	table := models.NewIndicatorTable()
	for _, name := range header {
		if vals, ok := extra[name]; ok {
			table.SetColumn(name, vals)
		}
	}

	return candles, table, nil
}

// parseRowTime извлекает метку времени бара: unix-колонка time либо
// готовая строка datetime. Без обеих колонок остается нулевое время.
func parseRowTime(row []string, colIdx map[string]int) time.Time {
	if idx, ok := colIdx["time"]; ok && idx < len(row) {
		if ts, err := strconv.ParseFloat(row[idx], 64); err == nil {
			return time.Unix(int64(ts), 0)
		}
	}
	if idx, ok := colIdx["datetime"]; ok && idx < len(row) {
		if t, err := time.Parse(models.TimeLayout, row[idx]); err == nil {
			return t
		}
	}
	return time.Time{}
}

// optionalField читает необязательную числовую колонку с запасным значением
func optionalField(row []string, colIdx map[string]int, name string, fallback float64) float64 {
	idx, ok := colIdx[name]
	if !ok || idx >= len(row) {
		return fallback
	}
	if v, err := strconv.ParseFloat(row[idx], 64); err == nil {
		return v
	}
	return fallback
}
