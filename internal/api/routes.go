package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sentinel/internal/api/handlers"
	"sentinel/internal/api/middleware"
	"sentinel/internal/bot"
	"sentinel/internal/websocket"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	// Движок отслеживания: источник снимков состояния и приемник
	// команд деактивации
	Engine *bot.Engine

	// Источник запросов на отслеживание для API-режима.
	// nil в интерактивном режиме - тогда маршруты управления
	// отслеживанием не регистрируются
	Source *bot.APISource

	// Hub для real-time обновлений по WebSocket
	Hub *websocket.Hub

	// bcrypt-хеш bearer-токена; пустая строка отключает авторизацию
	TokenHash string
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── GET    /status   - текущее состояние отслеживания
//	├── POST   /tracking - запустить отслеживание позиции
//	└── DELETE /tracking - остановить отслеживание
//
// /ws/stream - WebSocket для real-time снимков состояния
// /health    - health check
// /metrics   - Prometheus метрики
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
// 4. BearerAuth (только для /api/v1)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Глобальные middleware (применяются ко всем маршрутам)
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.BearerAuth(deps.TokenHash))

	if deps.Engine != nil {
		statusHandler := handlers.NewStatusHandler(deps.Engine)
		api.HandleFunc("/status", statusHandler.GetStatus).Methods("GET")

		if deps.Source != nil {
			trackingHandler := handlers.NewTrackingHandler(deps.Engine, deps.Source)
			api.HandleFunc("/tracking", trackingHandler.StartTracking).Methods("POST")
			api.HandleFunc("/tracking", trackingHandler.StopTracking).Methods("DELETE")
		}
	}

	// WebSocket route
	if deps.Hub != nil {
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(deps.Hub, w, r)
		})
	}

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Prometheus метрики
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}
