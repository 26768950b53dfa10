package handlers

import (
	"net/http"
	"strings"

	"sentinel/internal/models"
)

// TrackingController - управление движком, реализуется *bot.Engine
type TrackingController interface {
	Active() bool
	RequestDeactivation()
}

// TrackingSubmitter - подача запросов движку, реализуется *bot.APISource
type TrackingSubmitter interface {
	Submit(req *models.TrackingRequest) bool
}

// TrackingHandler отвечает за запуск и снятие отслеживания позиции
//
// Функции:
// - Запуск отслеживания (POST /api/v1/tracking)
// - Снятие отслеживания (DELETE /api/v1/tracking)
//
// Запуск асинхронный: запрос кладётся в слот источника, активацию
// выполняет цикл движка на ближайшем тике. Отсюда 202 Accepted.
type TrackingHandler struct {
	engine TrackingController
	source TrackingSubmitter
}

// NewTrackingHandler создает новый TrackingHandler
func NewTrackingHandler(engine TrackingController, source TrackingSubmitter) *TrackingHandler {
	return &TrackingHandler{engine: engine, source: source}
}

// StartTracking принимает параметры отслеживания
// POST /api/v1/tracking
func (h *TrackingHandler) StartTracking(w http.ResponseWriter, r *http.Request) {
	var req models.TrackingRequest
	if err := jsonCodec.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.engine.Active() {
		writeError(w, http.StatusConflict, "tracking is already active")
		return
	}

	if !h.source.Submit(&req) {
		writeError(w, http.StatusConflict, "a tracking request is already pending")
		return
	}

	writeJSON(w, http.StatusAccepted, SuccessResponse{
		Message: "tracking request accepted",
		Data:    req,
	})
}

// StopTracking снимает отслеживание на ближайшем тике движка
// DELETE /api/v1/tracking
func (h *TrackingHandler) StopTracking(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Active() {
		writeError(w, http.StatusConflict, "tracking is not active")
		return
	}

	h.engine.RequestDeactivation()

	writeJSON(w, http.StatusAccepted, SuccessResponse{
		Message: "deactivation requested",
	})
}
