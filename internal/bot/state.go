// Package bot содержит движок сверки: двусостоянный автомат, который
// держит защитные ордера (стоп-лосс и опциональный тейк-профит) в
// соответствии с живой позицией на бирже.
package bot

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"sentinel/internal/models"
)

// ValidTransitions определяет допустимые переходы между состояниями
var ValidTransitions = map[string][]string{
	models.StateInactive: {models.StateActive},
	models.StateActive:   {models.StateInactive},
}

// CanTransition проверяет допустимость перехода
func CanTransition(from, to string) bool {
	allowed, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// StateInfo возвращает описание состояния для UI
func StateInfo(s string) string {
	switch s {
	case models.StateInactive:
		return "Отслеживание не ведётся (ожидание параметров оператора)"
	case models.StateActive:
		return "Позиция отслеживается, защитные ордера поддерживаются"
	default:
		return "Неизвестное состояние"
	}
}

// TrackingState - единственная изменяемая память движка.
//
// Пишет в неё только горутина цикла сверки (single writer); RWMutex
// нужен лишь потому, что снимки читают HTTP API и WebSocket hub.
// Сбрасывается к значениям по умолчанию при закрытии позиции и при
// невосстановленной ошибке тика.
type TrackingState struct {
	mu sync.RWMutex

	state          string
	symbol         string
	stopLossBudget decimal.Decimal
	trackedValue   decimal.Decimal // последний видимый номинал позиции
	tpActive       bool
	tpPct          decimal.Decimal
	updatedAt      time.Time
}

// NewTrackingState создаёт состояние в INACTIVE с нулевыми параметрами
func NewTrackingState() *TrackingState {
	return &TrackingState{
		state:     models.StateInactive,
		updatedAt: time.Now(),
	}
}

// Activate переводит состояние в ACTIVE по параметрам оператора.
// trackedValue сбрасывается в ноль, чтобы гарантированно не совпасть
// с реальным номиналом и форсировать первую сверку.
func (s *TrackingState) Activate(req models.TrackingRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !CanTransition(s.state, models.StateActive) {
		return false
	}

	s.state = models.StateActive
	s.symbol = req.Symbol
	s.stopLossBudget = req.StopLossBudget
	s.trackedValue = decimal.Zero
	s.tpActive = req.TakeProfitActive
	s.tpPct = req.TakeProfitPct
	s.updatedAt = time.Now()
	return true
}

// Reset возвращает состояние к значениям по умолчанию (INACTIVE)
func (s *TrackingState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = models.StateInactive
	s.symbol = ""
	s.stopLossBudget = decimal.Zero
	s.trackedValue = decimal.Zero
	s.tpActive = false
	s.tpPct = decimal.Zero
	s.updatedAt = time.Now()
}

// Active возвращает true, когда отслеживается символ
func (s *TrackingState) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == models.StateActive
}

// Symbol возвращает отслеживаемый символ (пустая строка в INACTIVE)
func (s *TrackingState) Symbol() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.symbol
}

// StopLossBudget возвращает бюджет стоп-лосса в quote валюте
func (s *TrackingState) StopLossBudget() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopLossBudget
}

// TrackedValue возвращает последний учтённый номинал позиции
func (s *TrackingState) TrackedValue() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trackedValue
}

// SetTrackedValue обновляет учтённый номинал после успешной сверки
func (s *TrackingState) SetTrackedValue(v decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackedValue = v
	s.updatedAt = time.Now()
}

// TakeProfit возвращает настройки тейк-профита
func (s *TrackingState) TakeProfit() (bool, decimal.Decimal) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tpActive, s.tpPct
}

// Snapshot возвращает снимок состояния для API и WebSocket клиентов
func (s *TrackingState) Snapshot() models.TrackingSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.TrackingSnapshot{
		State:            s.state,
		Symbol:           s.symbol,
		StopLossBudget:   s.stopLossBudget,
		TrackedValue:     s.trackedValue,
		TakeProfitActive: s.tpActive,
		TakeProfitPct:    s.tpPct,
		UpdatedAt:        s.updatedAt,
	}
}
