package bot

import (
	"context"

	"github.com/shopspring/decimal"

	"sentinel/internal/exchange"
)

var hundred = decimal.NewFromInt(100)

// StopLossTrigger вычисляет цену срабатывания стоп-лосса.
//
// Бюджет убытка переводится в процент от номинала позиции:
//
//	percentage = budget * 100 / notional
//	delta      = entry * percentage / 100
//
// long: trigger = entry - delta; short: trigger = entry + delta.
// Бюджет больше номинала даёт trigger <= 0 для long - вызывающая
// сторона обязана пропустить постановку стопа (см. reconcile).
func StopLossTrigger(entry, budget, notional decimal.Decimal, long bool) decimal.Decimal {
	percentage := budget.Mul(hundred).Div(notional)
	delta := entry.Mul(percentage).Div(hundred)

	if long {
		return entry.Sub(delta)
	}
	return entry.Add(delta)
}

// TakeProfitTarget вычисляет лимитную цену тейк-профита.
// long: entry + entry*pct/100; short: entry - entry*pct/100.
func TakeProfitTarget(entry, pct decimal.Decimal, long bool) decimal.Decimal {
	delta := entry.Mul(pct).Div(hundred)

	if long {
		return entry.Add(delta)
	}
	return entry.Sub(delta)
}

// closeSide возвращает сторону закрывающего ордера для позиции
func closeSide(positionSide string) string {
	if positionSide == exchange.SideBuy {
		return exchange.SideSell
	}
	return exchange.SideBuy
}

// reconcile пересобирает защитные ордера под текущий номинал позиции.
// Вызывается только когда номинал изменился с прошлого тика.
//
// Протокол замены - cancel-then-place. Он не транзакционен: падение
// между отменой и постановкой оставляет позицию временно незащищённой.
// Окно ограничено интервалом опроса, и именно поэтому шаг отмены
// повторяется в начале каждой сверки, а не выполняется однократно.
func (e *Engine) reconcile(ctx context.Context, pos *exchange.Position) error {
	entry := pos.AvgOpenPrice
	long := pos.IsLong()

	trigger := StopLossTrigger(entry, e.state.StopLossBudget(), pos.EntryValue, long)
	if trigger.Sign() <= 0 {
		// Бюджет превышает номинал позиции: стоп с неположительной
		// ценой бессмыслен, нога пропускается целиком (ни отмены, ни постановки)
		e.log.Warnw("computed stop-loss trigger is not positive, skipping stop-loss",
			"symbol", pos.Symbol, "trigger", trigger.String())
		stopLossSkipped.Inc()
	} else {
		if err := e.replaceStopLoss(ctx, pos, trigger); err != nil {
			return err
		}
	}

	if tpActive, tpPct := e.state.TakeProfit(); tpActive {
		if err := e.replaceTakeProfit(ctx, pos, TakeProfitTarget(entry, tpPct, long)); err != nil {
			return err
		}
	}

	reconciliationsTotal.Inc()
	return nil
}

// replaceStopLoss отменяет все отложенные условные (TP/SL) ордера
// символа и ставит новый стоп, привязанный к позиции
func (e *Engine) replaceStopLoss(ctx context.Context, pos *exchange.Position, trigger decimal.Decimal) error {
	pending, err := e.ex.GetPendingTPSLOrders(ctx, pos.Symbol)
	if err != nil {
		return err
	}

	if len(pending) > 0 {
		ids := make([]string, len(pending))
		for i, o := range pending {
			ids[i] = o.ID
		}
		e.log.Infow("cancelling pending tpsl orders", "symbol", pos.Symbol, "count", len(ids))
		if err := e.ex.CancelOrders(ctx, pos.Symbol, ids); err != nil {
			return err
		}
		ordersCancelled.WithLabelValues("tpsl").Add(float64(len(ids)))
	}

	price := e.adjustOrWarn(ctx, pos.Symbol, trigger)
	if err := e.ex.PlacePositionTPSL(ctx, pos.Symbol, pos.PositionID, price.String(), ""); err != nil {
		return err
	}

	e.log.Infow("stop-loss placed", "symbol", pos.Symbol, "trigger", price.String())
	protectiveOrdersPlaced.WithLabelValues("stop_loss").Inc()
	return nil
}

// replaceTakeProfit отменяет лимитные ордера на закрывающей стороне
// (прежние тейк-профиты) и ставит новый закрывающий LIMIT ордер.
//
// Тейк-профит сознательно реализован обычным лимитным ордером, а не
// биржевым условным TP: у условных продуктов этой биржи другая
// семантика исполнения.
func (e *Engine) replaceTakeProfit(ctx context.Context, pos *exchange.Position, target decimal.Decimal) error {
	side := closeSide(pos.Side)

	open, err := e.ex.GetOpenOrders(ctx, pos.Symbol)
	if err != nil {
		return err
	}

	var ids []string
	for _, o := range open {
		if o.OrderType == exchange.OrderTypeLimit && o.Side == side {
			ids = append(ids, o.OrderID)
		}
	}
	if len(ids) > 0 {
		e.log.Infow("cancelling opposing limit orders", "symbol", pos.Symbol, "count", len(ids))
		if err := e.ex.CancelOrders(ctx, pos.Symbol, ids); err != nil {
			return err
		}
		ordersCancelled.WithLabelValues("limit").Add(float64(len(ids)))
	}

	price := e.adjustOrWarn(ctx, pos.Symbol, target)
	_, err = e.ex.PlaceOrder(ctx, exchange.PlaceOrderRequest{
		Symbol:     pos.Symbol,
		Side:       side,
		OrderType:  exchange.OrderTypeLimit,
		Qty:        pos.Qty.String(),
		TradeSide:  exchange.TradeSideClose,
		Price:      price.String(),
		PositionID: pos.PositionID,
	})
	if err != nil {
		return err
	}

	e.log.Infow("take-profit limit order placed", "symbol", pos.Symbol, "price", price.String())
	protectiveOrdersPlaced.WithLabelValues("take_profit").Inc()
	return nil
}

// adjustOrWarn подгоняет цену к сетке инструмента; при деградации
// (fail-open) пишет предупреждение и продолжает с исходной ценой
func (e *Engine) adjustOrWarn(ctx context.Context, symbol string, price decimal.Decimal) decimal.Decimal {
	res := e.adjuster.Adjust(ctx, symbol, price)
	if !res.Adjusted {
		e.log.Warnw("price precision lookup degraded, using raw price",
			"symbol", symbol, "price", price.String(), "reason", res.Reason)
		precisionFailOpen.Inc()
	}
	return res.Price
}
