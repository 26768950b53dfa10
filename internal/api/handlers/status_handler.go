package handlers

import (
	"net/http"

	"sentinel/internal/bot"
	"sentinel/internal/models"
)

// StatusReader - доступ к состоянию движка, реализуется *bot.Engine
type StatusReader interface {
	Snapshot() models.TrackingSnapshot
}

// StatusHandler отдаёт текущее состояние отслеживания
//
// Функции:
// - Снимок состояния движка (GET /api/v1/status)
//
// Снимок включает состояние автомата, символ, параметры защиты и
// последний учтённый номинал позиции
type StatusHandler struct {
	engine StatusReader
}

// NewStatusHandler создает новый StatusHandler
func NewStatusHandler(engine StatusReader) *StatusHandler {
	return &StatusHandler{engine: engine}
}

// statusResponse - снимок с человекочитаемым описанием состояния
type statusResponse struct {
	models.TrackingSnapshot
	Description string `json:"description"`
}

// GetStatus возвращает снимок состояния движка
// GET /api/v1/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()

	writeJSON(w, http.StatusOK, statusResponse{
		TrackingSnapshot: snap,
		Description:      bot.StateInfo(snap.State),
	})
}
