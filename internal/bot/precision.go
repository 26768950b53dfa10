package bot

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"sentinel/internal/exchange"
)

// AdjustResult - явный двухвариантный результат подгонки цены.
// Adjusted=false означает fail-open: цена возвращена без изменений,
// Reason описывает причину деградации (для лога/алерта).
type AdjustResult struct {
	Price    decimal.Decimal
	Adjusted bool
	Reason   string
}

// PriceAdjuster приводит цену к ценовой сетке инструмента.
//
// Точность инструмента запрашивается у биржи на каждый вызов и не
// кэшируется между вызовами (политика кэширования - задокументированная
// точка расширения, сознательно вне ядра).
//
// Политика отказа - fail-open, в отличие от fail-closed транспорта:
// защитный ордер с неподогнанной ценой лучше, чем отсутствие защиты.
type PriceAdjuster struct {
	ex exchange.Exchange
}

// NewPriceAdjuster создаёт adjuster поверх биржевого контракта
func NewPriceAdjuster(ex exchange.Exchange) *PriceAdjuster {
	return &PriceAdjuster{ex: ex}
}

// Adjust притягивает цену вниз к ближайшему узлу ценовой сетки.
//
// tick size = 10^(-quotePrecision); цена делится на tick, усекается
// к меньшему целому и умножается обратно. Вся арифметика десятичная,
// двоичный float здесь недопустим: артефакт округления сдвинул бы
// цену на тик от сетки, и биржа отклонила бы ордер.
func (a *PriceAdjuster) Adjust(ctx context.Context, symbol string, price decimal.Decimal) AdjustResult {
	pair, err := a.ex.GetTradingPair(ctx, symbol)
	if err != nil {
		return AdjustResult{Price: price, Reason: fmt.Sprintf("trading pair lookup failed: %v", err)}
	}
	if pair == nil {
		return AdjustResult{Price: price, Reason: fmt.Sprintf("trading pair %s not found", symbol)}
	}
	if pair.QuotePrecision == nil {
		return AdjustResult{Price: price, Reason: fmt.Sprintf("quotePrecision missing for %s", symbol)}
	}

	return AdjustResult{
		Price:    FloorToPrecision(price, *pair.QuotePrecision),
		Adjusted: true,
	}
}

// FloorToPrecision усекает цену вниз до precision десятичных знаков.
// Сдвиг на степень десяти точен в десятичной арифметике, поэтому
// 12.34567 при precision=4 даёт ровно 12.3456, никогда 12.3457.
func FloorToPrecision(price decimal.Decimal, precision int) decimal.Decimal {
	p := int32(precision)
	return price.Shift(p).Floor().Shift(-p)
}
