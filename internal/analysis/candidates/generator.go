package candidates

import (
	"sort"
	"sync"

	"github.com/skalibog/mseg/pkg/models"
)

// Generator реализует сканер кандидатов восходящих движений
type Generator struct {
	thresholds []float64
}

// NewGenerator создает новый генератор кандидатов.
// Пороги задаются по возрастанию в долях (0.0025 = 0.25%).
func NewGenerator(thresholds []float64) *Generator {
	return &Generator{
		thresholds: thresholds,
	}
}

// Generate находит всех кандидатов по всем порогам и объединяет их в общий пул.
// Сканы по порогам независимы и выполняются параллельно, результат собирается
// в порядке возрастания порогов, поэтому вывод детерминирован.
func (g *Generator) Generate(prices []float64, localMinima map[int]bool) []models.CandidateSegment {
	perThreshold := make([][]models.CandidateSegment, len(g.thresholds))

	var wg sync.WaitGroup
	for k, threshold := range g.thresholds {
		wg.Add(1)
		go func(k int, threshold float64) {
			defer wg.Done()
			perThreshold[k] = scanThreshold(prices, threshold, localMinima)
		}(k, threshold)
	}
	wg.Wait()

	var pool []models.CandidateSegment
	for _, found := range perThreshold {
		pool = append(pool, found...)
	}

	return pool
}

// scanThreshold сканирует серию для одного порога.
// Якорь отслеживает скользящий минимум с последнего внешнего шага: при падении
// цены ниже якоря он сдвигается на новый минимум, при достижении порога
// эмитится кандидат от якоря. Внешний курсор продолжает сразу за якорем.
func scanThreshold(prices []float64, threshold float64, localMinima map[int]bool) []models.CandidateSegment {
	n := len(prices)
	var found []models.CandidateSegment

	i := 0
	for i < n-1 {
		anchorIdx, anchorPrice := i, prices[i]

		for j := i + 1; j < n; j++ {
			// Нулевая или отрицательная цена делает процент неопределенным,
			// такой якорь сдвигаем вперед без сравнения
			if anchorPrice <= 0 {
				anchorIdx, anchorPrice = j, prices[j]
				continue
			}

			gain := (prices[j] - anchorPrice) / anchorPrice
			if gain >= threshold {
				found = append(found, models.CandidateSegment{
					Threshold:  threshold,
					StartIndex: anchorIdx,
					EndIndex:   j,
					StartPrice: anchorPrice,
					EndPrice:   prices[j],
					PctChange:  gain * 100,
					IsLocalMin: localMinima[anchorIdx],
				})
				break
			}
			if prices[j] < anchorPrice {
				anchorIdx, anchorPrice = j, prices[j]
			}
		}

		// Продолжаем сразу за последним отслеженным минимумом
		i = anchorIdx + 1
	}

	return found
}

// Deduplicate схлопывает кандидатов с одинаковой парой (start, end) в одного
// представителя с наибольшим pct_change. При точном равенстве остается
// первый встреченный. Результат отсортирован по (start, end).
func Deduplicate(pool []models.CandidateSegment) []models.CandidateSegment {
	type key struct {
		start, end int
	}

	best := make(map[key]models.CandidateSegment, len(pool))
	for _, c := range pool {
		k := key{c.StartIndex, c.EndIndex}
		if cur, ok := best[k]; !ok || c.PctChange > cur.PctChange {
			best[k] = c
		}
	}

	dedup := make([]models.CandidateSegment, 0, len(best))
	for _, c := range best {
		dedup = append(dedup, c)
	}
	sort.Slice(dedup, func(i, j int) bool {
		if dedup[i].StartIndex != dedup[j].StartIndex {
			return dedup[i].StartIndex < dedup[j].StartIndex
		}
		return dedup[i].EndIndex < dedup[j].EndIndex
	})

	return dedup
}
