// Пакет output выгружает результаты разметки в JSON-артефакты на диске.
// Формат записей читают внешние потребители, менять его нельзя.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/skalibog/mseg/internal/analysis/segmenter"
	"github.com/skalibog/mseg/pkg/logger"
	"github.com/skalibog/mseg/pkg/models"
	"go.uber.org/zap"
)

// Writer записывает артефакты прогона в каталог результатов
type Writer struct {
	baseDir string
}

// NewWriter создает новый писатель результатов
func NewWriter(baseDir string) *Writer {
	return &Writer{
		baseDir: baseDir,
	}
}

// Save создает каталог results_<метка времени>/json_segments и пишет туда
// три артефакта: оптимальные сегменты, негативные и объединенный список.
// Возвращает путь к каталогу прогона.
func (w *Writer) Save(result *segmenter.Result) (string, error) {
	runDir := filepath.Join(w.baseDir, "results_"+time.Now().Format("20060102_150405"))
	jsonDir := filepath.Join(runDir, "json_segments")
	if err := os.MkdirAll(jsonDir, 0755); err != nil {
		return "", fmt.Errorf("ошибка создания каталога результатов: %w", err)
	}

	artifacts := []struct {
		name     string
		segments []models.Segment
	}{
		{"optimal_segments.json", result.Optimal},
		{"negative_segments.json", result.Negative},
		{"all_segments.json", result.All},
	}

	for _, a := range artifacts {
		path := filepath.Join(jsonDir, a.name)
		if err := writeJSON(path, a.segments); err != nil {
			return "", err
		}
		logger.Info("Сегменты сохранены",
			zap.String("path", path),
			zap.Int("segments", len(a.segments)))
	}

	return runDir, nil
}

// writeJSON сериализует сегменты с отступами и пишет файл атомарно
func writeJSON(path string, segments []models.Segment) error {
	data, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации сегментов: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("ошибка переименования файла %s: %w", path, err)
	}

	return nil
}
