package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"sentinel/internal/models"
)

// ============ Mock реализации зависимостей handlers ============

// mockEngine реализует StatusReader и TrackingController
type mockEngine struct {
	snapshot models.TrackingSnapshot
	active   bool

	deactivationRequests int
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		snapshot: models.TrackingSnapshot{
			State:     models.StateInactive,
			UpdatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

// Переводит mock в активное состояние с заданным символом
func (m *mockEngine) activate(symbol string) {
	m.active = true
	m.snapshot = models.TrackingSnapshot{
		State:          models.StateActive,
		Symbol:         symbol,
		StopLossBudget: decimal.NewFromInt(50),
		TrackedValue:   decimal.NewFromInt(1000),
		UpdatedAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *mockEngine) Snapshot() models.TrackingSnapshot {
	return m.snapshot
}

func (m *mockEngine) Active() bool {
	return m.active
}

func (m *mockEngine) RequestDeactivation() {
	m.deactivationRequests++
}

// mockSource реализует TrackingSubmitter
type mockSource struct {
	submitResult bool
	submitted    []*models.TrackingRequest
}

func newMockSource() *mockSource {
	return &mockSource{submitResult: true}
}

func (m *mockSource) Submit(req *models.TrackingRequest) bool {
	if !m.submitResult {
		return false
	}
	m.submitted = append(m.submitted, req)
	return true
}

// Проверка соответствия интерфейсам на этапе компиляции
var (
	_ StatusReader       = (*mockEngine)(nil)
	_ TrackingController = (*mockEngine)(nil)
	_ TrackingSubmitter  = (*mockSource)(nil)
)
