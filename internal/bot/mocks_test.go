package bot

import (
	"context"
	"sync"

	"sentinel/internal/exchange"
)

// ============================================================
// Mock биржи для тестов движка
// ============================================================

// mockExchange - ручной mock контракта exchange.Exchange.
// Поведение задаётся func-полями; вызовы протоколируются в calls.
type mockExchange struct {
	mu    sync.Mutex
	calls []string

	getOpenPositionFn      func(ctx context.Context, symbol string) (*exchange.Position, error)
	getTradingPairFn       func(ctx context.Context, symbol string) (*exchange.TradingPair, error)
	getOpenOrdersFn        func(ctx context.Context, symbol string) ([]exchange.Order, error)
	getPendingTPSLFn       func(ctx context.Context, symbol string) ([]exchange.TPSLOrder, error)
	cancelOrdersFn         func(ctx context.Context, symbol string, orderIDs []string) error
	cancelAllOrdersFn      func(ctx context.Context, symbol string) error
	placeOrderFn           func(ctx context.Context, req exchange.PlaceOrderRequest) (*exchange.OrderResult, error)
	placePositionTPSLFn    func(ctx context.Context, symbol, positionID, slPrice, tpPrice string) error
}

func (m *mockExchange) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

// Calls возвращает копию журнала вызовов
func (m *mockExchange) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *mockExchange) GetOpenPosition(ctx context.Context, symbol string) (*exchange.Position, error) {
	m.record("GetOpenPosition")
	if m.getOpenPositionFn != nil {
		return m.getOpenPositionFn(ctx, symbol)
	}
	return nil, nil
}

func (m *mockExchange) GetTradingPair(ctx context.Context, symbol string) (*exchange.TradingPair, error) {
	m.record("GetTradingPair")
	if m.getTradingPairFn != nil {
		return m.getTradingPairFn(ctx, symbol)
	}
	return nil, nil
}

func (m *mockExchange) GetOpenOrders(ctx context.Context, symbol string) ([]exchange.Order, error) {
	m.record("GetOpenOrders")
	if m.getOpenOrdersFn != nil {
		return m.getOpenOrdersFn(ctx, symbol)
	}
	return nil, nil
}

func (m *mockExchange) GetPendingTPSLOrders(ctx context.Context, symbol string) ([]exchange.TPSLOrder, error) {
	m.record("GetPendingTPSLOrders")
	if m.getPendingTPSLFn != nil {
		return m.getPendingTPSLFn(ctx, symbol)
	}
	return nil, nil
}

func (m *mockExchange) CancelOrders(ctx context.Context, symbol string, orderIDs []string) error {
	m.record("CancelOrders")
	if m.cancelOrdersFn != nil {
		return m.cancelOrdersFn(ctx, symbol, orderIDs)
	}
	return nil
}

func (m *mockExchange) CancelAllOrders(ctx context.Context, symbol string) error {
	m.record("CancelAllOrders")
	if m.cancelAllOrdersFn != nil {
		return m.cancelAllOrdersFn(ctx, symbol)
	}
	return nil
}

func (m *mockExchange) PlaceOrder(ctx context.Context, req exchange.PlaceOrderRequest) (*exchange.OrderResult, error) {
	m.record("PlaceOrder")
	if m.placeOrderFn != nil {
		return m.placeOrderFn(ctx, req)
	}
	return &exchange.OrderResult{OrderID: "1"}, nil
}

func (m *mockExchange) PlacePositionTPSL(ctx context.Context, symbol, positionID, slPrice, tpPrice string) error {
	m.record("PlacePositionTPSL")
	if m.placePositionTPSLFn != nil {
		return m.placePositionTPSLFn(ctx, symbol, positionID, slPrice, tpPrice)
	}
	return nil
}

var _ exchange.Exchange = (*mockExchange)(nil)
