package exchange

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient поднимает httptest сервер и возвращает клиент, направленный на него
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", "test-secret", srv.URL), srv
}

// ============================================================
// Тесты разбора конверта ответа
// ============================================================

func TestClient_Get_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Запрос обязан нести все заголовки аутентификации
		for _, h := range []string{"api-key", "sign", "nonce", "timestamp"} {
			if r.Header.Get(h) == "" {
				t.Errorf("отсутствует заголовок %q", h)
			}
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("query symbol = %q, want BTCUSDT", got)
		}
		w.Write([]byte(`{"code":0,"msg":"success","data":{"value":42}}`))
	})

	data, err := client.Get(context.Background(), "/api/v1/futures/test", map[string]string{"symbol": "BTCUSDT"})
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(data) != `{"value":42}` {
		t.Errorf("payload = %s", data)
	}
}

func TestClient_Get_HTTPStatusError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	_, err := client.Get(context.Background(), "/x", nil)

	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("want *HTTPStatusError, got %T: %v", err, err)
	}
	if statusErr.Status != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", statusErr.Status)
	}
}

func TestClient_Get_APIError_Known(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":10007,"msg":"whatever the exchange said","data":null}`))
	})

	_, err := client.Get(context.Background(), "/x", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != 10007 {
		t.Errorf("code = %d, want 10007", apiErr.Code)
	}
	// Известный код разрешается через таблицу
	if apiErr.Message != "sign signature error" {
		t.Errorf("message = %q, want таблица ошибок", apiErr.Message)
	}
}

func TestClient_Get_APIError_Unknown(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":99999,"msg":"strange failure","data":null}`))
	})

	_, err := client.Get(context.Background(), "/x", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != 99999 || apiErr.Message != "strange failure" {
		t.Errorf("got %+v", apiErr)
	}
	// Неизвестный код поднимается как "unknown code N, message M"
	if want := "bitunix api unknown code 99999: strange failure"; apiErr.Error() != want {
		t.Errorf("Error() = %q, want %q", apiErr.Error(), want)
	}
}

func TestClient_TransportError(t *testing.T) {
	// Сервер закрывается до запроса: ответа не будет
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient("k", "s", srv.URL)
	srv.Close()

	_, err := client.Get(context.Background(), "/x", nil)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("want *TransportError, got %T: %v", err, err)
	}
}

// ============================================================
// Тесты подписи POST: подписываются те же байты, что и передаются
// ============================================================

func TestClient_Post_SignsTransmittedBytes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		want := Sign("test-key", "test-secret",
			r.Header.Get("nonce"), r.Header.Get("timestamp"), "", string(body))
		if got := r.Header.Get("sign"); got != want {
			t.Errorf("подпись не соответствует переданному телу: got %s want %s", got, want)
		}
		w.Write([]byte(`{"code":0,"msg":"success","data":{}}`))
	})

	body := struct {
		Symbol string `json:"symbol"`
	}{Symbol: "BTCUSDT"}

	if _, err := client.Post(context.Background(), "/x", body); err != nil {
		t.Fatalf("Post() error: %v", err)
	}
}

func TestClient_Get_SignsCanonicalQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Каноническая строка: ключи сортируются, пары склеиваются без кодирования
		want := Sign("test-key", "test-secret",
			r.Header.Get("nonce"), r.Header.Get("timestamp"), "limit10symbolBTCUSDT", "")
		if got := r.Header.Get("sign"); got != want {
			t.Errorf("подпись не соответствует канонической строке: got %s want %s", got, want)
		}
		w.Write([]byte(`{"code":0,"msg":"success","data":[]}`))
	})

	_, err := client.Get(context.Background(), "/x", map[string]string{"symbol": "BTCUSDT", "limit": "10"})
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
}

// ============================================================
// Тесты ресурсных методов
// ============================================================

func TestClient_GetOpenPosition_NotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"msg":"success","data":[]}`))
	})

	pos, err := client.GetOpenPosition(context.Background(), "btcusdt")
	if err != nil {
		t.Fatalf("GetOpenPosition() error: %v", err)
	}
	// Отсутствие позиции - не ошибка
	if pos != nil {
		t.Errorf("want nil position, got %+v", pos)
	}
}

func TestClient_GetOpenPosition_Decodes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("symbol должен переводиться в верхний регистр, got %q", got)
		}
		w.Write([]byte(`{"code":0,"msg":"success","data":[
			{"positionId":"12345","symbol":"BTCUSDT","side":"BUY",
			 "qty":"0.5","avgOpenPrice":"64000.5","entryValue":"32000.25"}
		]}`))
	})

	pos, err := client.GetOpenPosition(context.Background(), "btcusdt")
	if err != nil {
		t.Fatalf("GetOpenPosition() error: %v", err)
	}
	if pos == nil {
		t.Fatal("position is nil")
	}
	if pos.PositionID != "12345" || !pos.IsLong() {
		t.Errorf("got %+v", pos)
	}
	if pos.EntryValue.String() != "32000.25" {
		t.Errorf("entryValue = %s", pos.EntryValue)
	}
}

func TestClient_GetOpenPosition_MissingEntryValue(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"msg":"success","data":[
			{"positionId":"12345","symbol":"BTCUSDT","side":"BUY","qty":"0.5","avgOpenPrice":"64000"}
		]}`))
	})

	// qty без entryValue - нарушение протокола, поднимается ошибкой
	_, err := client.GetOpenPosition(context.Background(), "BTCUSDT")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %T: %v", err, err)
	}
}

func TestClient_GetAccount(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("marginCoin"); got != "USDT" {
			t.Errorf("marginCoin = %q, want USDT", got)
		}
		w.Write([]byte(`{"code":0,"msg":"success","data":
			{"marginCoin":"USDT","available":"1500.25","margin":"320","frozen":"0"}
		}`))
	})

	acc, err := client.GetAccount(context.Background(), "usdt")
	if err != nil {
		t.Fatalf("GetAccount() error: %v", err)
	}
	if acc.MarginCoin != "USDT" || acc.Available.String() != "1500.25" {
		t.Errorf("got %+v", acc)
	}
}

func TestClient_GetOpenOrders_OrderList(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"msg":"success","data":{"orderList":[
			{"orderId":"o-1","symbol":"BTCUSDT","side":"SELL","orderType":"LIMIT","qty":"0.5","price":"70000"},
			{"orderId":"o-2","symbol":"BTCUSDT","side":"BUY","orderType":"MARKET","qty":"0.1","price":"0"}
		]}}`))
	})

	orders, err := client.GetOpenOrders(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetOpenOrders() error: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("len = %d, want 2", len(orders))
	}
	if orders[0].OrderID != "o-1" || orders[0].OrderType != OrderTypeLimit {
		t.Errorf("got %+v", orders[0])
	}
}

func TestClient_GetPendingTPSLOrders(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"msg":"success","data":[
			{"id":"t-1","symbol":"BTCUSDT","slPrice":"60000"}
		]}`))
	})

	orders, err := client.GetPendingTPSLOrders(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetPendingTPSLOrders() error: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "t-1" {
		t.Errorf("got %+v", orders)
	}
}

func TestClient_CancelOrders_EmptyListNoCall(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`{"code":0,"msg":"success","data":{}}`))
	})

	if err := client.CancelOrders(context.Background(), "BTCUSDT", nil); err != nil {
		t.Fatalf("CancelOrders() error: %v", err)
	}
	if called {
		t.Error("пустой список не должен порождать запрос")
	}
}

func TestClient_PlaceOrder_DefaultsEffect(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req PlaceOrderRequest
		if err := jsonCodec.Unmarshal(body, &req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Effect != EffectGTC {
			t.Errorf("effect = %q, want GTC", req.Effect)
		}
		if req.Side != "SELL" || req.TradeSide != "CLOSE" {
			t.Errorf("got %+v", req)
		}
		w.Write([]byte(`{"code":0,"msg":"success","data":{"orderId":"o-9"}}`))
	})

	result, err := client.PlaceOrder(context.Background(), PlaceOrderRequest{
		Symbol:    "BTCUSDT",
		Side:      "sell",
		OrderType: "limit",
		Qty:       "0.5",
		TradeSide: "close",
	})
	if err != nil {
		t.Fatalf("PlaceOrder() error: %v", err)
	}
	if result.OrderID != "o-9" {
		t.Errorf("orderId = %q", result.OrderID)
	}
}
