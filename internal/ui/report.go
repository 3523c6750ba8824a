package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/skalibog/mseg/internal/analysis/segmenter"
	"github.com/skalibog/mseg/internal/config"
	"github.com/skalibog/mseg/pkg/models"
)

// Стили отчета
var (
	// Основные цвета
	optimalColor  = lipgloss.Color("#33cc33")
	negativeColor = lipgloss.Color("#cc3300")
	neutralColor  = lipgloss.Color("#999999")
	primaryColor  = lipgloss.Color("#0077cc")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1)

	chartStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(neutralColor).
			Padding(0, 1)

	optimalStyle  = lipgloss.NewStyle().Foreground(optimalColor)
	negativeStyle = lipgloss.NewStyle().Foreground(negativeColor)
	neutralStyle  = lipgloss.NewStyle().Foreground(neutralColor)

	headerRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))
	footerStyle    = lipgloss.NewStyle().Foreground(neutralColor).Padding(0, 1)
)

// Report строит текстовый отчет о прогоне разметки: график серии с
// раскраской по типам сегментов и таблицу сегментов
type Report struct {
	config config.UIConfig
}

// NewReport создает новый построитель отчета
func NewReport(cfg config.UIConfig) *Report {
	return &Report{
		config: cfg,
	}
}

// Render возвращает готовый к печати отчет
func (r *Report) Render(symbol string, candles []models.Candle, result *segmenter.Result) string {
	var b strings.Builder

	title := fmt.Sprintf("Разметка %s: %d оптимальных, %d негативных сегментов",
		symbol, len(result.Optimal), len(result.Negative))
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	b.WriteString(chartStyle.Render(r.renderChart(candles, result)))
	b.WriteString("\n")

	b.WriteString(r.renderTable(result.All))
	b.WriteString("\n")

	b.WriteString(footerStyle.Render(fmt.Sprintf(
		"кандидатов: %d, после дедупликации: %d", result.CandidateCount, result.DedupCount)))
	b.WriteString("\n")

	return b.String()
}

// renderChart рисует серию цен закрытия в символьной сетке.
// Бары оптимальных сегментов зеленые, негативных красные, не занятые
// разметкой серые. Общий граничный бар рисуется цветом оптимального.
func (r *Report) renderChart(candles []models.Candle, result *segmenter.Result) string {
	width, height := r.config.ChartWidth, r.config.ChartHeight
	n := len(candles)
	if n == 0 || width < 2 || height < 2 {
		return ""
	}
	if width > n {
		width = n
	}

	types := segmentTypesByIndex(n, result.All)

	minPrice, maxPrice := candles[0].Close, candles[0].Close
	for _, c := range candles[1:] {
		if c.Close < minPrice {
			minPrice = c.Close
		}
		if c.Close > maxPrice {
			maxPrice = c.Close
		}
	}
	priceRange := maxPrice - minPrice
	if priceRange == 0 {
		priceRange = 1
	}

	grid := make([][]string, height)
	for row := range grid {
		cells := make([]string, width)
		for col := range cells {
			cells[col] = " "
		}
		grid[row] = cells
	}

	for col := 0; col < width; col++ {
		idx := col * (n - 1) / (width - 1)
		row := int(float64(height-1) * (candles[idx].Close - minPrice) / priceRange)

		mark := neutralStyle.Render("·")
		switch types[idx] {
		case models.SegmentTypeOptimal:
			mark = optimalStyle.Render("█")
		case models.SegmentTypeNegative:
			mark = negativeStyle.Render("█")
		}
		grid[height-1-row][col] = mark
	}

	lines := make([]string, height)
	for row := range grid {
		lines[row] = strings.Join(grid[row], "")
	}
	return strings.Join(lines, "\n")
}

// renderTable выводит сегменты объединенного списка построчно
func (r *Report) renderTable(all []models.Segment) string {
	var b strings.Builder

	b.WriteString(headerRowStyle.Render(fmt.Sprintf("%-4s %-9s %-13s %-9s %-7s %-21s",
		"ID", "Тип", "Бары", "Изм. %", "Длина", "Начало")))
	b.WriteString("\n")

	for _, seg := range all {
		style := negativeStyle
		if seg.SegmentType == models.SegmentTypeOptimal {
			style = optimalStyle
		}
		line := fmt.Sprintf("%-4d %-9s %5d - %5d %8.2f %7d  %s",
			seg.SegmentID, seg.SegmentType, seg.StartIndex, seg.EndIndex,
			seg.PctChange, seg.SegmentLength, seg.StartTime)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}

// segmentTypesByIndex раскладывает типы сегментов по барам серии.
// Оптимальные сегменты записываются последними и выигрывают общий
// граничный бар у негативных.
func segmentTypesByIndex(n int, all []models.Segment) []string {
	types := make([]string, n)
	for _, seg := range all {
		if seg.SegmentType != models.SegmentTypeNegative {
			continue
		}
		for i := seg.StartIndex; i <= seg.EndIndex && i < n; i++ {
			types[i] = seg.SegmentType
		}
	}
	for _, seg := range all {
		if seg.SegmentType != models.SegmentTypeOptimal {
			continue
		}
		for i := seg.StartIndex; i <= seg.EndIndex && i < n; i++ {
			types[i] = seg.SegmentType
		}
	}
	return types
}
