package segmenter

import (
	"errors"
	"sort"

	"github.com/skalibog/mseg/internal/analysis/candidates"
	"github.com/skalibog/mseg/internal/analysis/extrema"
	"github.com/skalibog/mseg/internal/analysis/gaps"
	"github.com/skalibog/mseg/internal/analysis/optimizer"
	"github.com/skalibog/mseg/internal/config"
	"github.com/skalibog/mseg/pkg/logger"
	"github.com/skalibog/mseg/pkg/models"
	"go.uber.org/zap"
)

// ErrSeriesTooShort означает, что серия короче минимума для разметки
var ErrSeriesTooShort = errors.New("segmenter: серия слишком короткая для разметки")

// Segmenter объединяет все стадии разметки серии в один конвейер:
// детектор экстремумов, генератор кандидатов, дедупликацию, оптимизатор
// пути и построитель негативных сегментов
type Segmenter struct {
	cfg       config.SegmentationConfig
	detector  *extrema.Detector
	generator *candidates.Generator
	optimizer *optimizer.Optimizer
	gaps      *gaps.Builder
}

// Result содержит итоговую разметку серии
type Result struct {
	Optimal  []models.Segment
	Negative []models.Segment
	// Объединенный список, отсортированный по start_index
	All []models.Segment
	// Счетчики стадий для отчета
	CandidateCount int
	DedupCount     int
}

// NewSegmenter создает новый конвейер разметки с заданными параметрами
func NewSegmenter(cfg config.SegmentationConfig) *Segmenter {
	return &Segmenter{
		cfg:       cfg,
		detector:  extrema.NewDetector(cfg.ExtremaWindow),
		generator: candidates.NewGenerator(cfg.Thresholds),
		optimizer: optimizer.NewOptimizer(cfg.MaxDrawdown),
		gaps:      gaps.NewBuilder(cfg.IndicatorColumns),
	}
}

// Run выполняет один проход разметки по неизменяемой серии.
// Все стадии синхронные, таблица индикаторов передается в снимки сегментов
// как есть. Пустой пул кандидатов и пустой путь сигнализируются ошибками
// optimizer.ErrNoCandidates и optimizer.ErrNoPath.
func (s *Segmenter) Run(candles []models.Candle, table *models.IndicatorTable) (*Result, error) {
	if len(candles) < 2 {
		return nil, ErrSeriesTooShort
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	minima, _ := s.detector.Detect(closes)
	pool := s.generator.Generate(closes, minima)
	dedup := candidates.Deduplicate(pool)

	logger.Debug("Кандидаты собраны",
		zap.Int("pool", len(pool)),
		zap.Int("dedup", len(dedup)),
		zap.Int("local_minima", len(minima)))

	path, err := s.optimizer.FindPath(dedup)
	if err != nil {
		return nil, err
	}

	optimal := make([]models.Segment, 0, len(path))
	for i, c := range path {
		isLocalMin := c.IsLocalMin
		optimal = append(optimal, models.Segment{
			SegmentID:     i,
			SegmentType:   models.SegmentTypeOptimal,
			StartIndex:    c.StartIndex,
			EndIndex:      c.EndIndex,
			StartTime:     candles[c.StartIndex].OpenTime.Format(models.TimeLayout),
			EndTime:       candles[c.EndIndex].OpenTime.Format(models.TimeLayout),
			StartPrice:    models.Round(c.StartPrice, 2),
			EndPrice:      models.Round(c.EndPrice, 2),
			PctChange:     models.Round(c.PctChange, 2),
			SegmentLength: c.Length(),
			Columns:       append([]string(nil), s.cfg.IndicatorColumns...),
			Data:          table.Snapshot(s.cfg.IndicatorColumns, c.StartIndex, c.EndIndex),
			IsLocalMin:    &isLocalMin,
		})
	}

	negative := s.gaps.Build(optimal, candles, table)

	all := make([]models.Segment, 0, len(optimal)+len(negative))
	all = append(all, optimal...)
	all = append(all, negative...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].StartIndex < all[j].StartIndex
	})

	logger.Info("Разметка серии завершена",
		zap.Int("optimal", len(optimal)),
		zap.Int("negative", len(negative)))

	return &Result{
		Optimal:        optimal,
		Negative:       negative,
		All:            all,
		CandidateCount: len(pool),
		DedupCount:     len(dedup),
	}, nil
}
