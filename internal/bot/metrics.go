package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики движка сопровождения позиции
// ============================================================
//
// Использование:
// - Grafana дашборды для визуализации
// - Alertmanager для уведомлений о проблемах
// - Анализ churn защитных ордеров в production

// ============ Счётчики тиков ============

// ticksTotal - обработанные тики по исходу
// outcome: idle, activated, noop, reconciled, closed, error
var ticksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "sentinel",
		Subsystem: "engine",
		Name:      "ticks_total",
		Help:      "Total number of poll ticks by outcome",
	},
	[]string{"outcome"},
)

// tickDuration - длительность одного тика
var tickDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "sentinel",
		Subsystem: "engine",
		Name:      "tick_duration_seconds",
		Help:      "Duration of a single poll tick",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
)

// ============ Сверка и ордера ============

// reconciliationsTotal - выполненные пересборки защитных ордеров
var reconciliationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "sentinel",
		Subsystem: "engine",
		Name:      "reconciliations_total",
		Help:      "Total number of protective order reconciliations",
	},
)

// protectiveOrdersPlaced - поставленные защитные ордера
// kind: stop_loss, take_profit
var protectiveOrdersPlaced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "sentinel",
		Subsystem: "engine",
		Name:      "protective_orders_placed_total",
		Help:      "Total number of protective orders placed",
	},
	[]string{"kind"},
)

// ordersCancelled - отменённые ордера по виду
// kind: tpsl, limit, all
var ordersCancelled = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "sentinel",
		Subsystem: "engine",
		Name:      "orders_cancelled_total",
		Help:      "Total number of order cancellations issued during reconciliation",
	},
	[]string{"kind"},
)

// stopLossSkipped - пропуски стоп-ноги из-за неположительной цены триггера
var stopLossSkipped = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "sentinel",
		Subsystem: "engine",
		Name:      "stop_loss_skipped_total",
		Help:      "Stop-loss placements skipped due to non-positive trigger price",
	},
)

// ============ Деградация и ошибки ============

// precisionFailOpen - срабатывания fail-open при подгонке цены к сетке
var precisionFailOpen = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "sentinel",
		Subsystem: "engine",
		Name:      "precision_fail_open_total",
		Help:      "Price adjustments degraded to the raw price (fail-open)",
	},
)

// exchangeErrors - ошибки биржевого слоя по типу таксономии
// type: transport, http_status, api, other
var exchangeErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "sentinel",
		Subsystem: "exchange",
		Name:      "errors_total",
		Help:      "Exchange layer errors by taxonomy type",
	},
	[]string{"type"},
)

// trackingActive - 1 когда движок в состоянии ACTIVE, иначе 0
var trackingActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "sentinel",
		Subsystem: "engine",
		Name:      "tracking_active",
		Help:      "Whether the engine is actively tracking a position",
	},
)
