package exchange

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Заголовки аутентификации Bitunix OpenAPI.
// Каждый подписанный запрос несёт ровно эти четыре заголовка.
const (
	headerAPIKey    = "api-key"
	headerSign      = "sign"
	headerNonce     = "nonce"
	headerTimestamp = "timestamp"
)

// Nonce генерирует случайную одноразовую строку для подписи запроса.
// Повторное использование пары nonce/timestamp биржа отклоняет,
// поэтому nonce создаётся заново на каждый запрос.
func Nonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Timestamp возвращает текущее время в миллисекундах в виде строки
func Timestamp() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// Sign вычисляет подпись запроса по схеме Bitunix (двойной SHA-256):
//
//	digest = hex(sha256(nonce + timestamp + apiKey + query + body))
//	sign   = hex(sha256(digest + secretKey))
//
// Конструкция должна совпадать с биржевой бит-в-бит: любое изменение
// порядка полей, регистра или пробелов делает подпись недействительной.
// Функция чистая: для фиксированных входов результат детерминирован.
func Sign(apiKey, secretKey, nonce, timestamp, query, body string) string {
	first := sha256.Sum256([]byte(nonce + timestamp + apiKey + query + body))
	digest := hex.EncodeToString(first[:])

	second := sha256.Sum256([]byte(digest + secretKey))
	return hex.EncodeToString(second[:])
}

// SortParams собирает каноническую строку GET-параметров:
// ключи сортируются побайтово, пары конкатенируются как key+value
// без разделителей и без URL-кодирования
func SortParams(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(params[k])
	}
	return sb.String()
}

// AuthHeaders формирует полный набор заголовков аутентификации
// для запроса с данной канонической строкой query и телом body.
// Nonce и timestamp генерируются здесь же, по одному на запрос.
func AuthHeaders(apiKey, secretKey, query, body string) map[string]string {
	nonce := Nonce()
	timestamp := Timestamp()

	return map[string]string{
		headerAPIKey:    apiKey,
		headerSign:      Sign(apiKey, secretKey, nonce, timestamp, query, body),
		headerNonce:     nonce,
		headerTimestamp: timestamp,
	}
}
