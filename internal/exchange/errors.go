package exchange

import (
	"fmt"
)

// Таксономия ошибок биржевого слоя.
//
// TransportError  - ответ не получен (сеть, таймаут)
// HTTPStatusError - ответ получен, но HTTP статус не 2xx
// APIError        - HTTP 2xx, но бизнес-код в конверте не равен 0
//
// Все три пробрасываются наверх без частичной обработки: единственная
// граница восстановления - тик цикла сверки.

// TransportError - ошибка соединения, ответ от биржи не получен
type TransportError struct {
	Op  string // например "GET /api/v1/futures/market/trading_pairs"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

// Unwrap возвращает оригинальную ошибку для поддержки errors.Is() и errors.As()
func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPStatusError - биржа ответила не-2xx статусом
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Status, e.Body)
}

// APIError - бизнес-отказ биржи (code != 0 в конверте ответа)
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if known, ok := apiErrorTable[e.Code]; ok {
		return fmt.Sprintf("bitunix api error %d: %s", e.Code, known)
	}
	return fmt.Sprintf("bitunix api unknown code %d: %s", e.Code, e.Message)
}

// newAPIError строит APIError, подставляя сообщение из таблицы
// известных кодов, когда оно есть
func newAPIError(code int, msg string) *APIError {
	if known, ok := apiErrorTable[code]; ok {
		msg = known
	}
	return &APIError{Code: code, Message: msg}
}

// apiErrorTable - известные бизнес-коды Bitunix OpenAPI.
// Неизвестные коды не считаются ошибкой таблицы: они поднимаются
// как "unknown code N" с сообщением биржи.
var apiErrorTable = map[int]string{
	10001: "network error",
	10002: "parameter error",
	10003: "api-key can't be empty",
	10004: "ip is not in the api-key whitelist",
	10005: "too many requests, please try again later",
	10006: "request too frequently",
	10007: "sign signature error",
	10008: "value does not comply with the rule",
	20001: "market not exists",
	20002: "position exceeds the maximum limit",
	20003: "insufficient balance",
	20004: "insufficient trader",
	20007: "order not found",
	20010: "order price out of range",
	20011: "order quantity too small",
	30001: "position not exist",
	30002: "the trigger price is invalid",
}

// KnownAPIError сообщает, описан ли бизнес-код в таблице
func KnownAPIError(code int) bool {
	_, ok := apiErrorTable[code]
	return ok
}
