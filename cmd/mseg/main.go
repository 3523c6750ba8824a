package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skalibog/mseg/internal/analysis/indicators"
	"github.com/skalibog/mseg/internal/analysis/optimizer"
	"github.com/skalibog/mseg/internal/analysis/segmenter"
	"github.com/skalibog/mseg/internal/config"
	"github.com/skalibog/mseg/internal/exchange"
	"github.com/skalibog/mseg/internal/output"
	"github.com/skalibog/mseg/internal/series"
	"github.com/skalibog/mseg/internal/storage"
	"github.com/skalibog/mseg/internal/ui"
	"github.com/skalibog/mseg/pkg/logger"
	"github.com/skalibog/mseg/pkg/models"
	"go.uber.org/zap"
)

func main() {
	logger.Init()
	defer logger.GetLogger().Sync()

	// Обработка флагов командной строки
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	csvPath := flag.String("csv", "", "путь к CSV-файлу с серией (вместо хранилища и биржи)")
	symbolFlag := flag.String("symbol", "", "символ вместо заданного в конфигурации")
	view := flag.Bool("view", false, "интерактивный просмотр результатов")
	flag.Parse()

	// Проверяем наличие файла конфигурации
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Fatal("Файл конфигурации не найден", zap.String("path", *configPath))
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Ошибка загрузки конфигурации", zap.Error(err))
	}

	symbol := cfg.Input.Symbol
	if *symbolFlag != "" {
		symbol = *symbolFlag
	}

	// Контекст с отменой по сигналам завершения
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nЗавершение работы...")
		cancel()
	}()

	// Инициализируем хранилище, если оно настроено
	var store storage.Storage
	if cfg.Storage.Type == "influxdb" {
		influx, err := storage.NewInfluxDBStorage(cfg.Storage)
		if err != nil {
			logger.Fatal("Ошибка инициализации хранилища", zap.Error(err))
		}
		defer influx.Close()
		store = influx
	}

	// Загружаем серию и таблицу индикаторов
	candles, table, err := loadSeries(ctx, cfg, store, symbol, *csvPath)
	if err != nil {
		logger.Fatal("Ошибка загрузки серии", zap.Error(err))
	}
	logger.Info("Серия загружена",
		zap.String("symbol", symbol),
		zap.Int("candles", len(candles)),
		zap.Int("indicator_columns", len(table.Columns)))

	// Запускаем конвейер разметки
	seg := segmenter.NewSegmenter(cfg.Segmentation)
	result, err := seg.Run(candles, table)
	if err != nil {
		// Пустой пул кандидатов и пустой путь — не сбой, а пустой результат
		if errors.Is(err, optimizer.ErrNoCandidates) || errors.Is(err, optimizer.ErrNoPath) {
			logger.Warn("Разметка не дала сегментов", zap.String("symbol", symbol), zap.Error(err))
			return
		}
		logger.Fatal("Ошибка разметки серии", zap.Error(err))
	}

	// Сохраняем JSON-артефакты
	writer := output.NewWriter(cfg.Output.Dir)
	runDir, err := writer.Save(result)
	if err != nil {
		logger.Fatal("Ошибка сохранения результатов", zap.Error(err))
	}
	logger.Info("Результаты сохранены", zap.String("dir", runDir))

	// Дублируем сегменты в хранилище
	if store != nil {
		if err := store.SaveSegments(ctx, symbol, result.All); err != nil {
			logger.Warn("Не удалось сохранить сегменты в хранилище", zap.Error(err))
		}
	}

	// Отображаем результаты
	if *view {
		viewer := ui.NewViewer(cfg.UI, symbol, candles, result)
		if err := viewer.Run(); err != nil {
			logger.Fatal("Ошибка отображения результатов", zap.Error(err))
		}
		return
	}

	report := ui.NewReport(cfg.UI)
	fmt.Print(report.Render(symbol, candles, result))
}

// loadSeries выбирает источник серии: CSV-файл, хранилище или биржа.
// Таблица индикаторов берется из CSV, если он ее содержит, иначе
// рассчитывается по ценам закрытия.
func loadSeries(ctx context.Context, cfg *config.Config, store storage.Storage, symbol, csvPath string) ([]models.Candle, *models.IndicatorTable, error) {
	if csvPath != "" {
		candles, table, err := series.LoadCSV(csvPath, symbol, cfg.Input.Interval)
		if err != nil {
			return nil, nil, err
		}
		if len(table.Columns) > 0 {
			return candles, table, nil
		}
		return candles, computeIndicators(candles), nil
	}

	if store != nil {
		candles, err := store.GetCandles(ctx, symbol, cfg.Input.Interval, cfg.Input.Limit)
		if err != nil {
			return nil, nil, err
		}
		if len(candles) > 0 {
			return candles, computeIndicators(candles), nil
		}
		logger.Info("Хранилище пусто, загружаем свечи с биржи", zap.String("symbol", symbol))
	}

	client, err := exchange.NewBinanceClient(cfg.Binance)
	if err != nil {
		return nil, nil, err
	}
	collector := exchange.NewCandleCollector(client, store)
	candles, err := collector.Backfill(ctx, symbol, cfg.Input.Interval, cfg.Input.Limit)
	if err != nil {
		return nil, nil, err
	}

	return candles, computeIndicators(candles), nil
}

// computeIndicators строит таблицу индикаторов по ценам закрытия
func computeIndicators(candles []models.Candle) *models.IndicatorTable {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return indicators.NewCalculator().Compute(closes)
}
