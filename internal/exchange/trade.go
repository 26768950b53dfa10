package exchange

import (
	"context"
	"fmt"
	"strings"
)

const (
	pathPendingOrders     = "/api/v1/futures/trade/get_pending_orders"
	pathPendingTPSLOrders = "/api/v1/futures/tpsl/get_pending_orders"
	pathCancelOrders      = "/api/v1/futures/trade/cancel_orders"
	pathCancelAllOrders   = "/api/v1/futures/trade/cancel_all_orders"
	pathPlaceOrder        = "/api/v1/futures/trade/place_order"
	pathPlacePositionTPSL = "/api/v1/futures/tpsl/position/place_order"
)

// GetOpenOrders возвращает открытые ордера по символу.
// В отличие от TP/SL эндпойнта, здесь payload - объект со списком orderList.
func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]Order, error) {
	params := map[string]string{"symbol": strings.ToUpper(symbol)}

	data, err := c.Get(ctx, pathPendingOrders, params)
	if err != nil {
		return nil, err
	}

	var payload struct {
		OrderList []Order `json:"orderList"`
	}
	if err := jsonCodec.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode open orders for %s: %w", symbol, err)
	}
	return payload.OrderList, nil
}

// GetPendingTPSLOrders возвращает отложенные условные TP/SL ордера по символу
func (c *Client) GetPendingTPSLOrders(ctx context.Context, symbol string) ([]TPSLOrder, error) {
	params := map[string]string{"symbol": strings.ToUpper(symbol)}

	data, err := c.Get(ctx, pathPendingTPSLOrders, params)
	if err != nil {
		return nil, err
	}

	var orders []TPSLOrder
	if err := jsonCodec.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("decode tpsl orders for %s: %w", symbol, err)
	}
	return orders, nil
}

// cancelOrderRef - ссылка на отменяемый ордер (по orderId)
type cancelOrderRef struct {
	OrderID string `json:"orderId"`
}

// CancelOrders отменяет ордера по списку идентификаторов.
// Пустой список - no-op без обращения к бирже.
func (c *Client) CancelOrders(ctx context.Context, symbol string, orderIDs []string) error {
	if len(orderIDs) == 0 {
		return nil
	}

	refs := make([]cancelOrderRef, len(orderIDs))
	for i, id := range orderIDs {
		refs[i] = cancelOrderRef{OrderID: id}
	}

	body := struct {
		Symbol    string           `json:"symbol"`
		OrderList []cancelOrderRef `json:"orderList"`
	}{
		Symbol:    symbol,
		OrderList: refs,
	}

	_, err := c.Post(ctx, pathCancelOrders, body)
	return err
}

// CancelAllOrders отменяет все открытые ордера по символу.
// Используется как защитная уборка при закрытии отслеживаемой позиции,
// чтобы не оставлять осиротевшие условные ордера.
func (c *Client) CancelAllOrders(ctx context.Context, symbol string) error {
	body := struct {
		Symbol string `json:"symbol"`
	}{Symbol: strings.ToUpper(symbol)}

	_, err := c.Post(ctx, pathCancelAllOrders, body)
	return err
}

// PlaceOrder ставит новый ордер
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResult, error) {
	req.Side = strings.ToUpper(req.Side)
	req.OrderType = strings.ToUpper(req.OrderType)
	req.TradeSide = strings.ToUpper(req.TradeSide)
	if req.Effect == "" {
		req.Effect = EffectGTC
	}

	data, err := c.Post(ctx, pathPlaceOrder, req)
	if err != nil {
		return nil, err
	}

	var result OrderResult
	if err := jsonCodec.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode place order result: %w", err)
	}
	return &result, nil
}

// PlacePositionTPSL ставит TP и/или SL, привязанный к позиции.
// Срабатывание закрывает всю позицию по MARK_PRICE (семантика биржи).
// Пустая строка цены означает, что соответствующая нога не ставится.
func (c *Client) PlacePositionTPSL(ctx context.Context, symbol, positionID, slPrice, tpPrice string) error {
	body := struct {
		Symbol     string `json:"symbol"`
		PositionID string `json:"positionId"`
		SlPrice    string `json:"slPrice,omitempty"`
		TpPrice    string `json:"tpPrice,omitempty"`
	}{
		Symbol:     symbol,
		PositionID: positionID,
		SlPrice:    slPrice,
		TpPrice:    tpPrice,
	}

	_, err := c.Post(ctx, pathPlacePositionTPSL, body)
	return err
}
