package exchange

import (
	"context"
)

// Exchange определяет контракт биржи, потребляемый движком сверки.
// Единственная реализация - *Client (Bitunix); интерфейс нужен для
// подмены биржи моками в тестах движка.
type Exchange interface {
	// GetOpenPosition возвращает открытую позицию по символу.
	// Отсутствие позиции - не ошибка: возвращается (nil, nil).
	GetOpenPosition(ctx context.Context, symbol string) (*Position, error)

	// GetTradingPair возвращает метаданные инструмента, (nil, nil) если не найден
	GetTradingPair(ctx context.Context, symbol string) (*TradingPair, error)

	// GetOpenOrders возвращает открытые (обычные) ордера по символу
	GetOpenOrders(ctx context.Context, symbol string) ([]Order, error)

	// GetPendingTPSLOrders возвращает отложенные условные TP/SL ордера
	GetPendingTPSLOrders(ctx context.Context, symbol string) ([]TPSLOrder, error)

	// CancelOrders отменяет ордера по списку идентификаторов
	CancelOrders(ctx context.Context, symbol string, orderIDs []string) error

	// CancelAllOrders отменяет все открытые ордера по символу
	CancelAllOrders(ctx context.Context, symbol string) error

	// PlaceOrder ставит ордер (LIMIT/MARKET, OPEN/CLOSE)
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResult, error)

	// PlacePositionTPSL ставит TP и/или SL, привязанный к позиции.
	// Пустая строка цены означает "не ставить эту ногу".
	PlacePositionTPSL(ctx context.Context, symbol, positionID, slPrice, tpPrice string) error
}

// Проверка на этапе компиляции, что клиент реализует контракт
var _ Exchange = (*Client)(nil)
