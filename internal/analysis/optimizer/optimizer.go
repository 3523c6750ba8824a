package optimizer

import (
	"errors"
	"sort"

	"github.com/skalibog/mseg/pkg/models"
)

var (
	// ErrNoCandidates означает, что на вход не пришло ни одного кандидата
	ErrNoCandidates = errors.New("optimizer: нет кандидатов для оптимизации")

	// ErrNoPath означает, что при непустом входе путь не восстановился.
	// Каждый кандидат образует валидную цепочку из одного звена, поэтому
	// на практике эта ошибка недостижима и обрабатывается защитно.
	ErrNoPath = errors.New("optimizer: оптимальный путь не найден")
)

// Optimizer выбирает непересекающуюся цепочку кандидатов с максимальной
// суммарной оценкой при ограничении на просадку между соседними звеньями
type Optimizer struct {
	maxDrawdown float64 // отрицательная доля, например -0.02
}

// NewOptimizer создает новый оптимизатор пути
func NewOptimizer(maxDrawdown float64) *Optimizer {
	return &Optimizer{
		maxDrawdown: maxDrawdown,
	}
}

// Score возвращает оценку кандидата: процент прироста, сверхлинейно
// усиленный для коротких движений, с надбавкой за старт в локальном минимуме
func Score(c models.CandidateSegment) float64 {
	length := c.Length()
	if length <= 0 {
		return 0
	}
	score := c.PctChange * (1 + 0.5*c.PctChange/float64(length))
	if c.IsLocalMin {
		score *= 1.1
	}
	return score
}

// FindPath решает задачу взвешенного планирования интервалов динамическим
// программированием по кандидатам, отсортированным по start_index.
// dp[i] — лучшая сумма оценок цепочки, заканчивающейся кандидатом i;
// предшественники хранятся плоским массивом индексов и восстанавливаются
// обратным проходом. Сложность O(n²) по числу кандидатов.
func (o *Optimizer) FindPath(pool []models.CandidateSegment) ([]models.CandidateSegment, error) {
	if len(pool) == 0 {
		return nil, ErrNoCandidates
	}

	cands := make([]models.CandidateSegment, len(pool))
	copy(cands, pool)
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].StartIndex != cands[j].StartIndex {
			return cands[i].StartIndex < cands[j].StartIndex
		}
		return cands[i].EndIndex < cands[j].EndIndex
	})

	n := len(cands)
	scores := make([]float64, n)
	for i, c := range cands {
		scores[i] = Score(c)
	}

	limit := o.maxDrawdown * 100

	dp := make([]float64, n)
	prev := make([]int, n)
	for i := 0; i < n; i++ {
		// Одиночная цепочка всегда валидна
		dp[i] = scores[i]
		prev[i] = -1

		for j := 0; j < i; j++ {
			if cands[i].StartIndex <= cands[j].EndIndex {
				continue
			}
			// Нулевая цена конца предыдущего звена делает просадку
			// неопределенной, такой переход запрещаем
			if cands[j].EndPrice <= 0 {
				continue
			}
			drawdown := (cands[i].StartPrice - cands[j].EndPrice) / cands[j].EndPrice * 100
			// Просадка ровно на пределе отвергается: сравнение строгое
			if drawdown > limit && dp[j]+scores[i] > dp[i] {
				dp[i] = dp[j] + scores[i]
				prev[i] = j
			}
		}
	}

	// Лучшее завершение цепочки; при равенстве берется первый индекс
	best := 0
	for i := 1; i < n; i++ {
		if dp[i] > dp[best] {
			best = i
		}
	}

	var path []models.CandidateSegment
	for cur := best; cur != -1; cur = prev[cur] {
		path = append(path, cands[cur])
	}
	if len(path) == 0 {
		return nil, ErrNoPath
	}

	// Разворачиваем в порядок возрастания start_index
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}

	return path, nil
}
