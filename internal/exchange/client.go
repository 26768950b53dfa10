package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	jsoniter "github.com/json-iterator/go"
)

// jsonCodec - сериализация, совместимая со стандартной библиотекой.
// Важно для подписи: тело POST сериализуется ровно один раз, без
// вставленных пробелов, и те же байты уходят на провод.
var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// envelope - конверт ответа Bitunix: {"code": int, "msg": string, "data": ...}.
// Payload валиден только при code == 0.
const successCode = 0

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Client - аутентифицированный транспорт к Bitunix Futures OpenAPI.
// Ресурсные методы (account.go, market.go, trade.go) построены поверх
// Get/Post и не содержат собственной обработки ошибок.
type Client struct {
	apiKey    string
	secretKey string
	baseURL   string

	httpClient *http.Client
}

// NewClient создаёт клиент с настройками HTTP по умолчанию
func NewClient(apiKey, secretKey, baseURL string) *Client {
	return NewClientWithConfig(apiKey, secretKey, baseURL, DefaultHTTPClientConfig())
}

// NewClientWithConfig создаёт клиент с заданной конфигурацией HTTP
func NewClientWithConfig(apiKey, secretKey, baseURL string, cfg HTTPClientConfig) *Client {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Client{
		apiKey:     apiKey,
		secretKey:  secretKey,
		baseURL:    baseURL,
		httpClient: newHTTPClient(cfg),
	}
}

// SetHTTPClient подменяет HTTP клиент (используется в тестах)
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Get выполняет подписанный GET запрос.
// Каноническая строка для подписи строится из отсортированных параметров
// (SortParams), URL query кодируется отдельно стандартным способом.
func (c *Client) Get(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build GET %s: %w", path, err)
	}

	c.setHeaders(req, SortParams(params), "")
	return c.do(req, "GET "+path)
}

// Post выполняет подписанный POST запрос.
// body сериализуется один раз; подпись вычисляется над теми же байтами,
// которые передаются на провод.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	var raw []byte
	if body != nil {
		var err error
		raw, err = jsonCodec.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal POST %s body: %w", path, err)
		}
	} else {
		raw = []byte("{}")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build POST %s: %w", path, err)
	}

	c.setHeaders(req, "", string(raw))
	return c.do(req, "POST "+path)
}

// setHeaders навешивает общие и аутентификационные заголовки
func (c *Client) setHeaders(req *http.Request, query, body string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("language", "en-US")

	for k, v := range AuthHeaders(c.apiKey, c.secretKey, query, body) {
		req.Header.Set(k, v)
	}
}

// do выполняет запрос и разбирает конверт ответа.
//
// Разбор строго по таксономии:
//   - сеть/таймаут          -> *TransportError
//   - HTTP статус не 2xx    -> *HTTPStatusError
//   - бизнес-код не 0       -> *APIError
//   - иначе возвращается payload (поле data) как есть
func (c *Client) do(req *http.Request, op string) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	var env envelope
	if err := jsonCodec.Unmarshal(raw, &env); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode envelope: %w", err)}
	}

	if env.Code != successCode {
		return nil, newAPIError(env.Code, env.Msg)
	}

	return env.Data, nil
}
