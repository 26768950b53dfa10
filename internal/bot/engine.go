package bot

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"sentinel/internal/config"
	"sentinel/internal/exchange"
	"sentinel/internal/models"
)

// Исходы тика для метрик и выбора паузы
const (
	outcomeIdle       = "idle"       // INACTIVE, запроса от оператора нет
	outcomeActivated  = "activated"  // принят запрос, переход в ACTIVE
	outcomeNoop       = "noop"       // номинал не изменился, ордера не трогаем
	outcomeReconciled = "reconciled" // защитные ордера пересобраны
	outcomeClosed     = "closed"     // позиция закрыта, возврат в INACTIVE
	outcomeError      = "error"      // ошибка тика, сброс и восстановительная пауза
)

// SnapshotPublisher - интерфейс для отправки снимков состояния клиентам
//
// Реализуется пакетом internal/websocket/Hub
// Используется для real-time обновления UI после каждого изменения состояния
type SnapshotPublisher interface {
	// BroadcastTracking отправляет снимок состояния отслеживания
	BroadcastTracking(snap models.TrackingSnapshot)
}

// Engine - движок сопровождения позиции (poll-based, single writer)
//
// Архитектура:
//   - Один цикл опроса с фиксированным интервалом, без event-driven веток
//   - Вся изменяемая память в TrackingState; пишет только цикл
//   - Любая ошибка тика обрабатывается единообразно: сброс в INACTIVE
//     плюс удлинённая пауза перед следующим тиком
//
// Поток данных:
// TrackingSource → Engine.Run → Exchange (poll + cancel/place) → TrackingState → SnapshotPublisher
type Engine struct {
	ex       exchange.Exchange
	state    *TrackingState
	adjuster *PriceAdjuster
	source   TrackingSource
	pub      SnapshotPublisher
	log      *zap.SugaredLogger

	pollInterval  time.Duration
	recoveryDelay time.Duration

	// Взводится извне (HTTP DELETE), потребляется циклом
	deactivate atomic.Bool
}

// NewEngine создает движок. publisher может быть nil (без WebSocket потока)
func NewEngine(cfg config.BotConfig, ex exchange.Exchange, source TrackingSource, pub SnapshotPublisher, log *zap.SugaredLogger) *Engine {
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = time.Second
	}
	recovery := cfg.RecoveryDelay
	if recovery <= 0 {
		recovery = 10 * time.Second
	}

	return &Engine{
		ex:            ex,
		state:         NewTrackingState(),
		adjuster:      NewPriceAdjuster(ex),
		source:        source,
		pub:           pub,
		log:           log,
		pollInterval:  poll,
		recoveryDelay: recovery,
	}
}

// State возвращает состояние отслеживания для API и WebSocket слоёв
func (e *Engine) State() *TrackingState {
	return e.state
}

// Active сообщает, ведётся ли отслеживание
func (e *Engine) Active() bool {
	return e.state.Active()
}

// Snapshot возвращает снимок состояния для HTTP и WebSocket клиентов
func (e *Engine) Snapshot() models.TrackingSnapshot {
	return e.state.Snapshot()
}

// RequestDeactivation просит цикл снять отслеживание на ближайшем тике.
// Сама отмена ордеров выполняется циклом - извне состояние не трогаем.
func (e *Engine) RequestDeactivation() {
	e.deactivate.Store(true)
}

// Run запускает цикл опроса. Блокируется до отмены контекста.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Infow("engine started",
		"pollInterval", e.pollInterval, "recoveryDelay", e.recoveryDelay)

	for {
		start := time.Now()
		outcome := e.tick(ctx)
		tickDuration.Observe(time.Since(start).Seconds())
		ticksTotal.WithLabelValues(outcome).Inc()

		pause := e.pollInterval
		if outcome == outcomeError {
			pause = e.recoveryDelay
		}
		if !sleep(ctx, pause) {
			e.log.Infow("engine stopped")
			return ctx.Err()
		}
	}
}

// tick выполняет одну итерацию цикла и возвращает исход
func (e *Engine) tick(ctx context.Context) string {
	if ctx.Err() != nil {
		return outcomeIdle
	}
	if e.state.Active() {
		return e.tickActive(ctx)
	}
	return e.tickInactive(ctx)
}

// tickInactive ждёт запрос оператора и активирует отслеживание.
// trackedValue при активации равен нулю, поэтому первый активный тик
// с открытой позицией всегда выполняет сверку.
func (e *Engine) tickInactive(ctx context.Context) string {
	e.deactivate.Store(false)

	req, err := e.source.Next(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return outcomeIdle
		}
		e.log.Errorw("tracking source failed", "error", err)
		return outcomeError
	}
	if req == nil {
		return outcomeIdle
	}

	if err := req.Validate(); err != nil {
		e.log.Warnw("tracking request rejected", "error", err)
		return outcomeIdle
	}

	// Отслеживать можно только живую позицию: запрос без неё отклоняется
	// на месте, а не тащится в ACTIVE ради немедленного закрытия
	pos, err := e.ex.GetOpenPosition(ctx, req.Symbol)
	if err != nil {
		e.log.Errorw("failed to verify open position", "symbol", req.Symbol, "error", err)
		exchangeErrors.WithLabelValues(classifyError(err)).Inc()
		return outcomeError
	}
	if pos == nil || pos.Qty.IsZero() {
		e.log.Warnw("no open position for symbol, request ignored", "symbol", req.Symbol)
		return outcomeIdle
	}

	if !e.state.Activate(*req) {
		e.log.Warnw("tracking request ignored, engine already active", "symbol", req.Symbol)
		return outcomeIdle
	}

	trackingActive.Set(1)
	e.publish()
	e.log.Infow("tracking activated",
		"symbol", req.Symbol,
		"stopLossBudget", req.StopLossBudget.String(),
		"takeProfitActive", req.TakeProfitActive,
		"takeProfitPct", req.TakeProfitPct.String())
	return outcomeActivated
}

// tickActive опрашивает позицию и приводит защитные ордера в соответствие
func (e *Engine) tickActive(ctx context.Context) string {
	symbol := e.state.Symbol()

	if e.deactivate.CompareAndSwap(true, false) {
		e.log.Infow("deactivation requested, cancelling orders", "symbol", symbol)
		if err := e.ex.CancelAllOrders(ctx, symbol); err != nil {
			return e.failTick(ctx, symbol, err)
		}
		ordersCancelled.WithLabelValues("all").Inc()
		e.toInactive()
		return outcomeClosed
	}

	pos, err := e.ex.GetOpenPosition(ctx, symbol)
	if err != nil {
		return e.failTick(ctx, symbol, err)
	}

	// Закрытая или отсутствующая позиция: осиротевшие ордера снимаются,
	// отслеживание завершается
	if pos == nil || pos.Qty.IsZero() {
		e.log.Infow("position closed, cancelling remaining orders", "symbol", symbol)
		if err := e.ex.CancelAllOrders(ctx, symbol); err != nil {
			return e.failTick(ctx, symbol, err)
		}
		ordersCancelled.WithLabelValues("all").Inc()
		e.toInactive()
		return outcomeClosed
	}

	// Номинал не менялся с прошлого тика - биржу не трогаем
	if pos.EntryValue.Equal(e.state.TrackedValue()) {
		return outcomeNoop
	}

	e.log.Infow("position value changed, reconciling protective orders",
		"symbol", symbol,
		"trackedValue", e.state.TrackedValue().String(),
		"entryValue", pos.EntryValue.String())

	if err := e.reconcile(ctx, pos); err != nil {
		return e.failTick(ctx, symbol, err)
	}

	// Номинал фиксируется только после полной сверки: упавшая сверка
	// будет повторена на следующем тике
	e.state.SetTrackedValue(pos.EntryValue)
	e.publish()
	return outcomeReconciled
}

// failTick обрабатывает ошибку активного тика: лог, классификация,
// попытка снять ордера и сброс состояния. Восстановительную паузу
// выберет Run по исходу.
func (e *Engine) failTick(ctx context.Context, symbol string, err error) string {
	e.log.Errorw("tick failed, resetting tracking", "symbol", symbol, "error", err)
	exchangeErrors.WithLabelValues(classifyError(err)).Inc()

	// Best effort: позиция могла остаться, но состояние движка уже
	// недостоверно, поэтому ордера снимаются, а не оставляются висеть
	if symbol != "" && ctx.Err() == nil {
		if cancelErr := e.ex.CancelAllOrders(ctx, symbol); cancelErr != nil {
			e.log.Warnw("failed to cancel orders during reset", "symbol", symbol, "error", cancelErr)
		} else {
			ordersCancelled.WithLabelValues("all").Inc()
		}
	}

	e.toInactive()
	return outcomeError
}

// toInactive сбрасывает состояние и уведомляет клиентов
func (e *Engine) toInactive() {
	e.state.Reset()
	trackingActive.Set(0)
	e.publish()
}

func (e *Engine) publish() {
	if e.pub != nil {
		e.pub.BroadcastTracking(e.state.Snapshot())
	}
}

// classifyError относит ошибку к типу таксономии биржевого слоя
func classifyError(err error) string {
	var transportErr *exchange.TransportError
	var statusErr *exchange.HTTPStatusError
	var apiErr *exchange.APIError

	switch {
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &statusErr):
		return "http_status"
	case errors.As(err, &apiErr):
		return "api"
	default:
		return "other"
	}
}

// sleep ждёт d или отмену контекста; false - контекст отменён
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
