package exchange

import (
	"context"
	"fmt"
	"strings"
)

const (
	pathPendingPositions = "/api/v1/futures/position/get_pending_positions"
	pathAccount          = "/api/v1/futures/account"
)

// GetAccount возвращает состояние фьючерсного счёта в указанной
// марже. Вызывается при старте как проверка учётных данных: невалидный
// ключ или подпись проявляются здесь, а не на первом тике.
func (c *Client) GetAccount(ctx context.Context, marginCoin string) (*Account, error) {
	params := map[string]string{"marginCoin": strings.ToUpper(marginCoin)}

	data, err := c.Get(ctx, pathAccount, params)
	if err != nil {
		return nil, err
	}

	var acc Account
	if err := jsonCodec.Unmarshal(data, &acc); err != nil {
		return nil, fmt.Errorf("decode account for %s: %w", marginCoin, err)
	}
	return &acc, nil
}

// GetOpenPosition возвращает открытую позицию по символу.
//
// Биржа отвечает списком даже для одного символа; берётся первый элемент.
// Пустой список - позиции нет, возвращается (nil, nil): "не найдено"
// моделируется явным пустым значением, а не ошибкой.
//
// Инвариант протокола: позиция с ненулевым qty обязана нести entryValue.
// Нарушение поднимается как ошибка класса APIError, а не угадывается
// значением по умолчанию.
func (c *Client) GetOpenPosition(ctx context.Context, symbol string) (*Position, error) {
	params := map[string]string{"symbol": strings.ToUpper(symbol)}

	data, err := c.Get(ctx, pathPendingPositions, params)
	if err != nil {
		return nil, err
	}

	var positions []Position
	if err := jsonCodec.Unmarshal(data, &positions); err != nil {
		return nil, fmt.Errorf("decode positions for %s: %w", symbol, err)
	}

	if len(positions) == 0 {
		return nil, nil
	}

	pos := positions[0]
	if !pos.Qty.IsZero() && pos.EntryValue.IsZero() {
		return nil, &APIError{Code: -1, Message: fmt.Sprintf("position %s has qty but no entryValue", pos.PositionID)}
	}

	return &pos, nil
}
