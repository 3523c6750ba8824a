package indicators

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/skalibog/mseg/pkg/models"
)

// Минимум баров для устойчивой работы преобразования Гильберта
const minBars = 64

// Период стандартного отклонения для оценки шума в snr
const noisePeriod = 10

// Calculator рассчитывает индикаторные колонки серии на основе
// циклических метрик преобразования Гильберта
type Calculator struct{}

// NewCalculator создает новый калькулятор индикаторов
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute строит таблицу индикаторов по ценам закрытия.
// На коротких сериях возвращается пустая таблица: снимки сегментов
// заполнятся null, ядро разметки от индикаторов не зависит.
func (c *Calculator) Compute(closes []float64) *models.IndicatorTable {
	table := models.NewIndicatorTable()
	n := len(closes)
	if n < minBars {
		return table
	}

	sine, _ := talib.HtSine(closes)
	dcPhase := talib.HtDcPhase(closes)
	dcPeriod := talib.HtDcPeriod(closes)
	inPhase, quadrature := talib.HtPhasor(closes)
	noise := talib.StdDev(closes, noisePeriod, 1.0)

	// Скорость и направление фазы: изменение фазы цикла за бар
	velocity := make([]float64, n)
	direction := make([]float64, n)
	for i := 1; i < n; i++ {
		velocity[i] = dcPhase[i] - dcPhase[i-1]
		if velocity[i] > 0 {
			direction[i] = 1
		} else if velocity[i] < 0 {
			direction[i] = -1
		}
	}

	// Амплитуда цикла из компонент фазора
	strength := make([]float64, n)
	for i := 0; i < n; i++ {
		strength[i] = math.Sqrt(inPhase[i]*inPhase[i] + quadrature[i]*quadrature[i])
	}

	// Стабильность цикла: обратная величина к дрейфу доминантного периода
	stability := make([]float64, n)
	for i := 1; i < n; i++ {
		stability[i] = 1 / (1 + math.Abs(dcPeriod[i]-dcPeriod[i-1]))
	}

	// Отношение амплитуды цикла к шуму цены
	snr := make([]float64, n)
	for i := 0; i < n; i++ {
		if noise[i] > 0 {
			snr[i] = strength[i] / noise[i]
		}
	}

	table.SetColumn("adaptive_EB_sinewave", sine)
	table.SetColumn("cycle_stage", dcPhase)
	table.SetColumn("phase_velocity", velocity)
	table.SetColumn("phase_direction", direction)
	table.SetColumn("cycle_strength", strength)
	table.SetColumn("cycle_stability", stability)
	table.SetColumn("snr", snr)

	return table
}
