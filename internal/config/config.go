package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"
)

// Config представляет полную конфигурацию приложения
type Config struct {
	Binance      BinanceConfig      `yaml:"binance"`
	Input        InputConfig        `yaml:"input"`
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Storage      StorageConfig      `yaml:"storage"`
	Output       OutputConfig       `yaml:"output"`
	UI           UIConfig           `yaml:"ui"`
}

// BinanceConfig содержит настройки подключения к Binance
type BinanceConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Testnet   bool   `yaml:"testnet"`
}

// InputConfig описывает источник ценовой серии
type InputConfig struct {
	Symbol   string `yaml:"symbol"`
	Interval string `yaml:"interval"`
	Limit    int    `yaml:"limit"`
}

// SegmentationConfig содержит параметры разметки серии.
// Значения передаются в конвейер при создании, глобального состояния нет.
type SegmentationConfig struct {
	// Пороги прироста по возрастанию, в долях (0.0025 = 0.25%)
	Thresholds []float64 `yaml:"thresholds"`
	// Максимально допустимая просадка между сегментами, отрицательная доля
	MaxDrawdown float64 `yaml:"max_drawdown"`
	// Окно поиска локальных экстремумов
	ExtremaWindow int `yaml:"extrema_window"`
	// Индикаторные колонки для снимков сегментов
	IndicatorColumns []string `yaml:"indicator_columns"`
}

// StorageConfig настройки хранения данных
type StorageConfig struct {
	Type         string `yaml:"type"`
	URL          string `yaml:"url"`
	Token        string `yaml:"token"`
	Organization string `yaml:"organization"`
	Bucket       string `yaml:"bucket"`
}

// OutputConfig настройки выгрузки результатов
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// UIConfig настройки отображения результатов
type UIConfig struct {
	ChartWidth  int `yaml:"chart_width"`
	ChartHeight int `yaml:"chart_height"`
}

// DefaultIndicatorColumns — набор колонок из эталонной разметки
var DefaultIndicatorColumns = []string{
	"adaptive_EB_sinewave",
	"cycle_stage",
	"phase_velocity",
	"phase_direction",
	"cycle_strength",
	"cycle_stability",
	"snr",
}

// Load загружает конфигурацию из файла
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла конфигурации: %w", err)
	}

	config.applyDefaults()
	if err := config.Segmentation.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация разметки: %w", err)
	}

	return &config, nil
}

// applyDefaults подставляет значения эталонной конфигурации вместо пропущенных
func (c *Config) applyDefaults() {
	if len(c.Segmentation.Thresholds) == 0 {
		c.Segmentation.Thresholds = []float64{0.0025, 0.003, 0.004, 0.005, 0.006, 0.007, 0.008, 0.009, 0.01}
	}
	if c.Segmentation.MaxDrawdown == 0 {
		c.Segmentation.MaxDrawdown = -0.02
	}
	if c.Segmentation.ExtremaWindow == 0 {
		c.Segmentation.ExtremaWindow = 5
	}
	if len(c.Segmentation.IndicatorColumns) == 0 {
		c.Segmentation.IndicatorColumns = append([]string(nil), DefaultIndicatorColumns...)
	}
	if c.Input.Interval == "" {
		c.Input.Interval = "1h"
	}
	if c.Input.Limit == 0 {
		c.Input.Limit = 1000
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.UI.ChartWidth == 0 {
		c.UI.ChartWidth = 120
	}
	if c.UI.ChartHeight == 0 {
		c.UI.ChartHeight = 20
	}
}

// Validate проверяет параметры разметки
func (s SegmentationConfig) Validate() error {
	if len(s.Thresholds) == 0 {
		return fmt.Errorf("список порогов пуст")
	}
	if !sort.Float64sAreSorted(s.Thresholds) {
		return fmt.Errorf("пороги должны быть отсортированы по возрастанию")
	}
	for _, t := range s.Thresholds {
		if t <= 0 {
			return fmt.Errorf("порог должен быть положительным, получено %v", t)
		}
	}
	if s.MaxDrawdown >= 0 {
		return fmt.Errorf("максимальная просадка должна быть отрицательной, получено %v", s.MaxDrawdown)
	}
	if s.ExtremaWindow < 1 {
		return fmt.Errorf("окно экстремумов должно быть не меньше 1, получено %d", s.ExtremaWindow)
	}
	return nil
}
