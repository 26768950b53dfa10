package bot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"sentinel/internal/models"
)

// TrackingSource поставляет движку запросы оператора.
// (nil, nil) означает "запроса пока нет" - движок возвращается в цикл.
type TrackingSource interface {
	Next(ctx context.Context) (*models.TrackingRequest, error)
}

// ============ Интерактивный источник (stdin) ============

// PromptSource опрашивает оператора в терминале: тикер, бюджет
// стоп-лосса, опциональный тейк-профит. Невалидный ввод не роняет
// цикл - печатается сообщение и возвращается (nil, nil).
type PromptSource struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPromptSource создаёт источник поверх произвольных потоков
// (stdin/stdout в продакшене, буферы в тестах)
func NewPromptSource(in io.Reader, out io.Writer) *PromptSource {
	return &PromptSource{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Next блокируется до ввода оператора или конца потока
func (p *PromptSource) Next(ctx context.Context) (*models.TrackingRequest, error) {
	ticker, ok := p.prompt("Enter ticker (e.g. BTC): ")
	if !ok {
		return nil, io.EOF
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		fmt.Fprintln(p.out, "Ticker cannot be empty")
		return nil, nil
	}
	symbol := ticker + "USDT"

	budgetRaw, ok := p.prompt("Enter max loss in USDT: ")
	if !ok {
		return nil, io.EOF
	}
	budget, err := decimal.NewFromString(strings.TrimSpace(budgetRaw))
	if err != nil || !budget.IsPositive() {
		fmt.Fprintln(p.out, "Max loss must be a positive number")
		return nil, nil
	}

	tpAnswer, ok := p.prompt("Enable take-profit? (y/N): ")
	if !ok {
		return nil, io.EOF
	}

	req := &models.TrackingRequest{
		Symbol:         symbol,
		StopLossBudget: budget,
	}

	if strings.EqualFold(strings.TrimSpace(tpAnswer), "y") {
		pctRaw, ok := p.prompt("Enter take-profit percent from entry price: ")
		if !ok {
			return nil, io.EOF
		}
		pct, err := decimal.NewFromString(strings.TrimSpace(pctRaw))
		if err != nil || !pct.IsPositive() {
			fmt.Fprintln(p.out, "Take-profit percent must be a positive number")
			return nil, nil
		}
		req.TakeProfitActive = true
		req.TakeProfitPct = pct
	}

	return req, nil
}

func (p *PromptSource) prompt(msg string) (string, bool) {
	fmt.Fprint(p.out, msg)
	if !p.in.Scan() {
		return "", false
	}
	return p.in.Text(), true
}

// ============ Программный источник (HTTP API) ============

// APISource принимает запросы от HTTP хендлеров. Буфер на один
// запрос: пока движок активен, новые запросы отклоняются на стороне
// API, очередь не нужна.
type APISource struct {
	requests chan *models.TrackingRequest
}

// NewAPISource создаёт источник для программной подачи запросов
func NewAPISource() *APISource {
	return &APISource{
		requests: make(chan *models.TrackingRequest, 1),
	}
}

// Submit передаёт запрос движку. false - слот занят (запрос уже
// ожидает обработки)
func (a *APISource) Submit(req *models.TrackingRequest) bool {
	select {
	case a.requests <- req:
		return true
	default:
		return false
	}
}

// Next не блокируется: при пустом слоте возвращает (nil, nil),
// чтобы цикл движка сохранял фиксированный интервал опроса
func (a *APISource) Next(ctx context.Context) (*models.TrackingRequest, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case req := <-a.requests:
		return req, nil
	default:
		return nil, nil
	}
}
