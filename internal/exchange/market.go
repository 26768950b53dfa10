package exchange

import (
	"context"
	"fmt"
	"strings"
)

const pathTradingPairs = "/api/v1/futures/market/trading_pairs"

// GetTradingPair возвращает метаданные инструмента (точность цены и т.п.).
// Биржа отвечает списком даже для одного символа; берётся первый элемент,
// пустой список - (nil, nil).
func (c *Client) GetTradingPair(ctx context.Context, symbol string) (*TradingPair, error) {
	params := map[string]string{"symbols": strings.ToUpper(symbol)}

	data, err := c.Get(ctx, pathTradingPairs, params)
	if err != nil {
		return nil, err
	}

	var pairs []TradingPair
	if err := jsonCodec.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("decode trading pairs for %s: %w", symbol, err)
	}

	if len(pairs) == 0 {
		return nil, nil
	}
	return &pairs[0], nil
}
