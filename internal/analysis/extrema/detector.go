package extrema

// Detector реализует поиск локальных экстремумов скользящим окном
type Detector struct {
	window int
}

// NewDetector создает новый детектор экстремумов с заданным окном
func NewDetector(window int) *Detector {
	if window < 1 {
		window = 1
	}
	return &Detector{
		window: window,
	}
}

// Detect находит индексы локальных минимумов и максимумов ценовой серии.
// Бар считается минимумом, если его цена не выше всех цен в окне слева и
// справа (нестрогое сравнение, плато засчитываются). Для максимумов условие
// симметричное. Крайние бары ближе окна к границам серии не классифицируются.
func (d *Detector) Detect(prices []float64) (minima, maxima map[int]bool) {
	minima = make(map[int]bool)
	maxima = make(map[int]bool)

	n := len(prices)
	window := d.window

	// Если серия короче 2w+1, окно ужимается
	if n < 2*window+1 {
		window = (n-1)/2 - 1
		if window < 1 {
			window = 1
		}
	}
	if n < 2*window+1 {
		return minima, maxima
	}

	for i := window; i < n-window; i++ {
		isMin, isMax := true, true
		for j := i - window; j <= i+window; j++ {
			if j == i {
				continue
			}
			if prices[i] > prices[j] {
				isMin = false
			}
			if prices[i] < prices[j] {
				isMax = false
			}
			if !isMin && !isMax {
				break
			}
		}
		if isMin {
			minima[i] = true
		}
		if isMax {
			maxima[i] = true
		}
	}

	return minima, maxima
}
