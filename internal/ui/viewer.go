package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/skalibog/mseg/internal/analysis/segmenter"
	"github.com/skalibog/mseg/internal/config"
	"github.com/skalibog/mseg/pkg/models"
)

// Стили интерактивного просмотрщика
var (
	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
)

// Viewer представляет интерактивный просмотрщик результатов разметки
type Viewer struct {
	symbol   string
	candles  []models.Candle
	result   *segmenter.Result
	report   *Report
	selected int
}

// NewViewer создает новый просмотрщик
func NewViewer(cfg config.UIConfig, symbol string, candles []models.Candle, result *segmenter.Result) *Viewer {
	return &Viewer{
		symbol:  symbol,
		candles: candles,
		result:  result,
		report:  NewReport(cfg),
	}
}

// Run запускает просмотрщик в основном потоке (блокирующий вызов)
func (v *Viewer) Run() error {
	program := tea.NewProgram(viewerModel{viewer: v})
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("ошибка интерактивного режима: %w", err)
	}
	return nil
}

// viewerModel — модель для bubbletea
type viewerModel struct {
	viewer *Viewer
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.viewer.selected > 0 {
				m.viewer.selected--
			}
		case "down", "j":
			if m.viewer.selected < len(m.viewer.result.All)-1 {
				m.viewer.selected++
			}
		}
	}
	return m, nil
}

func (m viewerModel) View() string {
	v := m.viewer
	var b strings.Builder

	title := fmt.Sprintf("Разметка %s: %d оптимальных, %d негативных сегментов",
		v.symbol, len(v.result.Optimal), len(v.result.Negative))
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	b.WriteString(chartStyle.Render(v.report.renderChart(v.candles, v.result)))
	b.WriteString("\n")

	// Список сегментов с подсветкой выбранного
	for i, seg := range v.result.All {
		line := fmt.Sprintf("%-4d %-9s %5d - %5d %8.2f%%",
			seg.SegmentID, seg.SegmentType, seg.StartIndex, seg.EndIndex, seg.PctChange)
		if i == v.selected {
			b.WriteString(selectedStyle.Render(line))
		} else if seg.SegmentType == models.SegmentTypeOptimal {
			b.WriteString(optimalStyle.Render(line))
		} else {
			b.WriteString(negativeStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if v.selected >= 0 && v.selected < len(v.result.All) {
		b.WriteString(detailStyle.Render(renderDetail(v.result.All[v.selected])))
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render("↑/↓ — выбор сегмента, q — выход"))
	return b.String()
}

// renderDetail показывает подробности выбранного сегмента,
// включая последний снимок индикаторов
func renderDetail(seg models.Segment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Сегмент %d (%s)\n", seg.SegmentID, seg.SegmentType)
	fmt.Fprintf(&b, "Бары:   %d - %d (%d)\n", seg.StartIndex, seg.EndIndex, seg.SegmentLength)
	fmt.Fprintf(&b, "Время:  %s - %s\n", seg.StartTime, seg.EndTime)
	fmt.Fprintf(&b, "Цена:   %.2f - %.2f (%.2f%%)\n", seg.StartPrice, seg.EndPrice, seg.PctChange)
	if seg.IsLocalMin != nil {
		fmt.Fprintf(&b, "Старт в локальном минимуме: %v\n", *seg.IsLocalMin)
	}

	if len(seg.Data) > 0 {
		b.WriteString("Индикаторы на последнем баре:\n")
		last := seg.Data[len(seg.Data)-1]
		for i, name := range seg.Columns {
			if i < len(last) && last[i] != nil {
				fmt.Fprintf(&b, "  %-22s %.4f\n", name, *last[i])
			} else {
				fmt.Fprintf(&b, "  %-22s -\n", name)
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
