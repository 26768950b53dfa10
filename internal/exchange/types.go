package exchange

import (
	"github.com/shopspring/decimal"
)

// Стороны ордера и позиции (формат Bitunix)
const (
	SideBuy  = "BUY"  // покупка (long позиция открыта покупкой)
	SideSell = "SELL" // продажа (short позиция открыта продажей)
)

// Типы ордера
const (
	OrderTypeLimit  = "LIMIT"
	OrderTypeMarket = "MARKET"
)

// Направление сделки относительно позиции
const (
	TradeSideOpen  = "OPEN"
	TradeSideClose = "CLOSE"
)

// Время жизни ордера
const (
	EffectGTC = "GTC"
)

// Position - снимок открытой позиции на бирже.
// Позицией владеет биржа: движок только читает снимок на каждом тике,
// никаких локальных мутаций и предположений об атомарности между
// чтением позиции и постановкой ордера против неё.
// Account - состояние фьючерсного счёта в одной марже
type Account struct {
	MarginCoin string          `json:"marginCoin"`
	Available  decimal.Decimal `json:"available"`
	Margin     decimal.Decimal `json:"margin"`
	Frozen     decimal.Decimal `json:"frozen"`
}

type Position struct {
	PositionID   string          `json:"positionId"`
	Symbol       string          `json:"symbol"`
	Side         string          `json:"side"` // BUY (long) или SELL (short)
	Qty          decimal.Decimal `json:"qty"`
	AvgOpenPrice decimal.Decimal `json:"avgOpenPrice"`
	EntryValue   decimal.Decimal `json:"entryValue"` // номинал позиции в quote валюте
}

// IsLong возвращает true для длинной позиции
func (p *Position) IsLong() bool {
	return p.Side == SideBuy
}

// TradingPair - метаданные инструмента.
// QuotePrecision - количество десятичных знаков цены; из него выводится
// tick size = 10^(-precision). Указатель, а не int: отсутствие поля в
// ответе биржи должно быть различимо (fail-open в precision adjuster).
type TradingPair struct {
	Symbol         string `json:"symbol"`
	QuotePrecision *int   `json:"quotePrecision"`
	BasePrecision  *int   `json:"basePrecision"`
}

// Order - открытый (обычный) ордер
type Order struct {
	OrderID   string          `json:"orderId"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	OrderType string          `json:"orderType"`
	Qty       decimal.Decimal `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

// TPSLOrder - отложенный условный (TP/SL) ордер
type TPSLOrder struct {
	ID      string          `json:"id"`
	Symbol  string          `json:"symbol"`
	SlPrice decimal.Decimal `json:"slPrice"`
	TpPrice decimal.Decimal `json:"tpPrice"`
}

// PlaceOrderRequest - параметры постановки ордера.
// Порядок полей фиксирует порядок сериализации: тело подписывается
// ровно в том виде, в котором уходит на провод.
type PlaceOrderRequest struct {
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	OrderType string `json:"orderType"`
	Qty       string `json:"qty"`
	TradeSide string `json:"tradeSide"`

	Price      string `json:"price,omitempty"`
	PositionID string `json:"positionId,omitempty"`
	Effect     string `json:"effect,omitempty"`
	ReduceOnly bool   `json:"reduceOnly"`
	ClientID   string `json:"clientId,omitempty"`

	// Встроенные TP/SL поля (опциональны)
	TpPrice      string `json:"tpPrice,omitempty"`
	TpStopType   string `json:"tpStopType,omitempty"`
	TpOrderType  string `json:"tpOrderType,omitempty"`
	TpOrderPrice string `json:"tpOrderPrice,omitempty"`
	SlPrice      string `json:"slPrice,omitempty"`
	SlStopType   string `json:"slStopType,omitempty"`
	SlOrderType  string `json:"slOrderType,omitempty"`
	SlOrderPrice string `json:"slOrderPrice,omitempty"`
}

// OrderResult - результат постановки ордера
type OrderResult struct {
	OrderID  string `json:"orderId"`
	ClientID string `json:"clientId"`
}
