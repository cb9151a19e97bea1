package notify

import (
	"context"
	"slices"
	"sync"

	"github.com/nikolayk812/cart-demo/internal/domain"
	"github.com/nikolayk812/cart-demo/internal/port"
	"github.com/sirupsen/logrus"
)

type logNotifier struct {
	log logrus.FieldLogger
}

// NewLog writes every notification to log.
func NewLog(log logrus.FieldLogger) port.Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Notify(_ context.Context, msg domain.Notification) {
	entry := n.log.WithFields(logrus.Fields{
		"notification_id": msg.ID.String(),
		"product_id":      msg.ProductID,
	})
	if msg.Err != nil {
		entry = entry.WithError(msg.Err)
	}

	switch msg.Level {
	case domain.LevelError:
		entry.Error(msg.Message)
	default:
		entry.Info(msg.Message)
	}
}

// Recorder keeps notifications in memory until drained.
type Recorder struct {
	mu   sync.Mutex
	msgs []domain.Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(_ context.Context, msg domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.msgs = append(r.msgs, msg)
}

func (r *Recorder) Notifications() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.msgs)
}

// Drain returns the recorded notifications and forgets them.
func (r *Recorder) Drain() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := r.msgs
	r.msgs = nil
	return msgs
}

type multi []port.Notifier

// Multi fans a notification out to every notifier in order.
func Multi(notifiers ...port.Notifier) port.Notifier {
	return multi(slices.DeleteFunc(slices.Clone(notifiers), func(n port.Notifier) bool {
		return n == nil
	}))
}

func (m multi) Notify(ctx context.Context, msg domain.Notification) {
	for _, n := range m {
		n.Notify(ctx, msg)
	}
}
