package voice

import (
	"context"
	"fmt"
	"sync"

	"homebudget/internal/amqp"
	applog "homebudget/internal/log"
	"homebudget/internal/mutate"
)

// Worker consumes voice command messages from the queue and records the
// parsed expenses through the mutation service. A transcript that cannot be
// parsed is logged and dropped; it never blocks the queue.
type Worker struct {
	client   *amqp.Client
	mutator  *mutate.Service
	keywords map[string][]string
	logger   *applog.Logger

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewWorker(client *amqp.Client, mutator *mutate.Service, keywords map[string][]string, logger *applog.Logger) *Worker {
	if keywords == nil {
		keywords = DefaultKeywords()
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Worker{
		client:   client,
		mutator:  mutator,
		keywords: keywords,
		logger:   logger.WithComponent(applog.ComponentVoice),
	}
}

// Start begins consuming in the background. Returns an error if already running.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("voice worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	w.logger.Info("Voice worker started")
	return nil
}

// Stop gracefully stops the worker and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		w.logger.Info("Voice worker stopped")
	case <-ctx.Done():
		w.logger.Warn("Voice worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

func (w *Worker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-w.stopCh
		cancel()
	}()

	if err := w.client.ConsumeVoiceCommands(ctx, w.Handle); err != nil && ctx.Err() == nil {
		w.logger.Error("Voice consumption ended", applog.FieldError, err)
	}
}

// Handle processes one transcript end to end: parse, then record the expense
// as a Cash payment. Parse failures are not returned as errors; requeueing a
// transcript that will never parse is pointless.
func (w *Worker) Handle(msg *amqp.VoiceCommandMessage) error {
	parsed, err := Parse(msg.Transcript, w.keywords)
	if err != nil {
		w.logger.Warn("Dropping unparseable transcript",
			applog.FieldTranscript, msg.Transcript, applog.FieldError, err)
		return nil
	}

	_, err = w.mutator.AddExpense(context.Background(), mutate.ExpenseInput{
		Amount:        parsed.Amount,
		CategoryID:    parsed.CategoryID,
		PaymentMethod: "Cash",
		Description:   parsed.Description,
	})
	if err != nil {
		return fmt.Errorf("record voice expense: %w", err)
	}

	w.logger.Info("Recorded voice expense",
		applog.FieldCategoryID, parsed.CategoryID,
		applog.FieldAmount, parsed.Amount)
	return nil
}
