package exchange

import (
	"context"
	"fmt"

	"github.com/skalibog/mseg/internal/storage"
	"github.com/skalibog/mseg/pkg/logger"
	"github.com/skalibog/mseg/pkg/models"
	"go.uber.org/zap"
)

// CandleCollector выполняет разовую загрузку исторических свечей
// с биржи в хранилище
type CandleCollector struct {
	client *BinanceClient
	store  storage.Storage
}

// NewCandleCollector создает новый сборщик свечей
func NewCandleCollector(client *BinanceClient, store storage.Storage) *CandleCollector {
	return &CandleCollector{
		client: client,
		store:  store,
	}
}

// Backfill скачивает свечи символа и сохраняет их в хранилище,
// возвращая загруженную серию в хронологическом порядке
func (c *CandleCollector) Backfill(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	candles, err := c.client.GetKlines(ctx, symbol, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки свечей с биржи: %w", err)
	}

	if c.store != nil {
		if err := c.store.SaveCandles(ctx, candles); err != nil {
			return nil, fmt.Errorf("ошибка сохранения свечей: %w", err)
		}
	}

	logger.Info("Загрузка свечей завершена",
		zap.String("symbol", symbol),
		zap.String("interval", interval),
		zap.Int("candles", len(candles)))

	return candles, nil
}
