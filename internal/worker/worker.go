package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/oracle"
	"main/internal/queue"
)

const (
	defaultDequeueTimeout = time.Second
	defaultIdleDelay      = 100 * time.Millisecond
	defaultErrorDelay     = time.Second

	requeueBatch = 100
)

// Store is the slice of the transaction store the worker touches.
type Store interface {
	ListPending(ctx context.Context, limit int) ([]model.Transaction, error)
	UpdateStatus(ctx context.Context, id string, status enum.Status, errorMessage string) error
	RecordExecution(ctx context.Context, id string, price, quantity, amount decimal.Decimal) error
}

// Ledger applies settlement adjustments.
type Ledger interface {
	Adjust(ctx context.Context, userID string, delta decimal.Decimal) (bool, error)
}

// Queue is the consuming side of the work queue, plus the producing side
// the startup sweep needs.
type Queue interface {
	Enqueue(ctx context.Context, task queue.Task) (string, error)
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Task, error)
	SetStatus(ctx context.Context, processingID string, status enum.Status, result map[string]any) error
}

// Config tunes the consumer loop.
type Config struct {
	DequeueTimeout time.Duration
	IdleDelay      time.Duration
	ErrorDelay     time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.DequeueTimeout <= 0 {
		cfg.DequeueTimeout = defaultDequeueTimeout
	}
	if cfg.IdleDelay <= 0 {
		cfg.IdleDelay = defaultIdleDelay
	}
	if cfg.ErrorDelay <= 0 {
		cfg.ErrorDelay = defaultErrorDelay
	}
	return cfg
}

// Worker is the single consumer loop that turns queued execution tasks
// into settled transactions. One bad task never stops the loop; every
// failure ends with the transaction marked terminal and, for buys, the
// original hold refunded.
type Worker struct {
	queue  Queue
	store  Store
	ledger Ledger
	oracle oracle.Oracle
	cfg    Config

	running atomic.Bool
}

func New(q Queue, store Store, ledger Ledger, o oracle.Oracle, cfg Config) *Worker {
	return &Worker{
		queue:  q,
		store:  store,
		ledger: ledger,
		oracle: o,
		cfg:    cfg.withDefaults(),
	}
}

// Run consumes tasks until the context is cancelled. The priority lane is
// drained before the normal lane on every dequeue.
func (w *Worker) Run(ctx context.Context) {
	if w.running.Swap(true) {
		return
	}
	defer w.running.Store(false)

	logs.Info("execution worker started")
	w.requeuePending(ctx)

	for {
		select {
		case <-ctx.Done():
			logs.Info("execution worker stopped")
			return
		default:
		}

		task, err := w.queue.Dequeue(ctx, w.cfg.DequeueTimeout)
		if err != nil {
			logs.Errorf("dequeue task, err: %+v", err)
			w.sleep(ctx, w.cfg.ErrorDelay)
			continue
		}
		if task == nil {
			w.sleep(ctx, w.cfg.IdleDelay)
			continue
		}

		w.Process(ctx, *task)
	}
}

// Process settles one task and records the outcome on both the durable
// store and the ephemeral status cache. Store or queue write failures are
// logged and swallowed; this task instance is lost rather than wedging
// the loop.
func (w *Worker) Process(ctx context.Context, task queue.Task) {
	logs.Infof("processing task %s for transaction %s", task.ProcessingID, task.TransactionID)

	if err := w.queue.SetStatus(ctx, task.ProcessingID, enum.StatusProcessing, nil); err != nil {
		logs.Warnf("set task %s processing, err: %+v", task.ProcessingID, err)
	}

	outcome, err := w.settle(ctx, task)
	if err != nil {
		w.fail(ctx, task, err)
		return
	}

	if err := w.store.RecordExecution(ctx, task.TransactionID, outcome.ExecutedPrice, outcome.ExecutedQuantity, outcome.ExecutedAmount); err != nil {
		logs.Errorf("record execution for transaction %s, err: %+v", task.TransactionID, err)
	}
	if err := w.queue.SetStatus(ctx, task.ProcessingID, enum.StatusCompleted, outcome.Result(task.TransactionID)); err != nil {
		logs.Errorf("set task %s completed, err: %+v", task.ProcessingID, err)
	}

	logs.Infof("task %s completed, executed %s at %s", task.ProcessingID,
		outcome.ExecutedQuantity.String(), outcome.ExecutedPrice.String())
}

// fail marks the transaction terminal and compensates the buy-side hold.
// This runs even when the settlement error was a transient ledger fault:
// the transaction must never stay silently in processing past this point.
func (w *Worker) fail(ctx context.Context, task queue.Task, cause error) {
	logs.Errorf("task %s failed, err: %+v", task.ProcessingID, cause)

	if err := w.store.UpdateStatus(ctx, task.TransactionID, enum.StatusFailed, cause.Error()); err != nil {
		logs.Errorf("mark transaction %s failed, err: %+v", task.TransactionID, err)
	}
	if err := w.queue.SetStatus(ctx, task.ProcessingID, enum.StatusFailed, map[string]any{
		"error": cause.Error(),
	}); err != nil {
		logs.Errorf("set task %s failed, err: %+v", task.ProcessingID, err)
	}

	if task.Side == enum.SideBuy {
		refunded, err := w.ledger.Adjust(ctx, task.UserID, task.Amount)
		if err != nil || !refunded {
			logs.Errorf("refund hold %s for transaction %s, err: %+v",
				task.Amount.String(), task.TransactionID, err)
			return
		}
		logs.Infof("refunded %s to user %s for failed buy %s",
			task.Amount.String(), task.UserID, task.TransactionID)
	}
}

// requeuePending rebuilds queue tasks for transactions a crash left in
// pending between creation and enqueue. Runs once at startup; a row that
// requeues successfully moves to processing.
func (w *Worker) requeuePending(ctx context.Context) {
	txs, err := w.store.ListPending(ctx, requeueBatch)
	if err != nil {
		logs.Errorf("list pending transactions, err: %+v", err)
		return
	}

	for _, tx := range txs {
		quantity := decimal.Zero
		if tx.QuotedPrice.IsPositive() {
			quantity = tx.Amount.DivRound(tx.QuotedPrice, quantityScale)
		}
		task := queue.Task{
			ProcessingID:  tx.ProcessingID,
			TransactionID: tx.ID,
			UserID:        tx.UserID,
			Symbol:        tx.Symbol,
			Side:          tx.Side,
			Quantity:      quantity,
			QuotedPrice:   tx.QuotedPrice,
			Amount:        tx.Amount,
		}
		if _, err := w.queue.Enqueue(ctx, task); err != nil {
			logs.Errorf("requeue transaction %s, err: %+v", tx.ID, err)
			continue
		}
		if err := w.store.UpdateStatus(ctx, tx.ID, enum.StatusProcessing, ""); err != nil {
			logs.Warnf("mark transaction %s processing, err: %+v", tx.ID, err)
		}
		logs.Infof("requeued pending transaction %s", tx.ID)
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
