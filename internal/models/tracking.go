// Package models содержит доменные типы, разделяемые движком сверки,
// HTTP API и WebSocket потоком состояния.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Состояния движка сверки.
// INACTIVE - символ не отслеживается; ACTIVE - отслеживается ровно один.
const (
	StateInactive = "INACTIVE"
	StateActive   = "ACTIVE"
)

// TrackingRequest - параметры отслеживания, поданные оператором.
// Невалидный запрос отклоняется на границе ввода (prompt или HTTP)
// и никогда не достигает движка.
type TrackingRequest struct {
	Symbol           string          `json:"symbol"`
	StopLossBudget   decimal.Decimal `json:"stopLossBudget"` // максимальный убыток в quote валюте
	TakeProfitActive bool            `json:"takeProfitActive"`
	TakeProfitPct    decimal.Decimal `json:"takeProfitPct"` // процент от цены входа
}

// Validate проверяет параметры запроса
func (r *TrackingRequest) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if !r.StopLossBudget.IsPositive() {
		return fmt.Errorf("stop-loss budget must be positive, got %s", r.StopLossBudget)
	}
	if r.TakeProfitActive && !r.TakeProfitPct.IsPositive() {
		return fmt.Errorf("take-profit percentage must be positive, got %s", r.TakeProfitPct)
	}
	return nil
}

// TrackingSnapshot - снимок состояния движка для API и WebSocket клиентов
type TrackingSnapshot struct {
	State            string          `json:"state"`
	Symbol           string          `json:"symbol,omitempty"`
	StopLossBudget   decimal.Decimal `json:"stopLossBudget"`
	TrackedValue     decimal.Decimal `json:"trackedValue"`
	TakeProfitActive bool            `json:"takeProfitActive"`
	TakeProfitPct    decimal.Decimal `json:"takeProfitPct"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
