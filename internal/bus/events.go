package bus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-photolist/internal/fetch"
	"github.com/tendant/simple-photolist/internal/img"
	"github.com/tendant/simple-photolist/internal/photo"
	"github.com/tendant/simple-photolist/internal/task"
	"github.com/tendant/simple-photolist/pkg/schema"
)

// Publisher sends JSON payloads; *Client implements it.
type Publisher interface {
	PublishJSON(subject string, v any) error
}

// ClassifyFailure maps a stage failure onto its wire failure type.
func ClassifyFailure(err error) schema.FailureType {
	if err == nil {
		return ""
	}
	var transportErr *fetch.TransportError
	if errors.As(err, &transportErr) {
		return schema.FailureTypeTransport
	}
	var transformErr *img.TransformError
	if errors.As(err, &transformErr) {
		return schema.FailureTypeTransform
	}
	return schema.FailureTypeUnknown
}

// ChangeEvent builds the ItemChanged event for a record snapshot.
func ChangeEvent(s photo.Snapshot) schema.ItemChanged {
	evt := schema.ItemChanged{
		ID:         uuid.NewString(),
		Index:      s.ID,
		Name:       s.Name,
		URL:        s.URL,
		State:      s.State.String(),
		RawBytes:   s.RawSize,
		HappenedAt: time.Now().Unix(),
	}
	if a := s.Artifact; a != nil {
		evt.Width = a.Width
		evt.Height = a.Height
		evt.Path = a.Path
	}
	if s.State == photo.StateFailed && s.Failure != nil {
		evt.Error = s.Failure.Error()
		evt.FailureType = ClassifyFailure(s.Failure)
	}
	return evt
}

// Notifier publishes every item change and then forwards it to next.
type Notifier struct {
	pub     Publisher
	subject string
	lookup  func(id int) *photo.Record
	next    task.Notifier
	logger  *slog.Logger
}

func NewNotifier(pub Publisher, subject string, lookup func(id int) *photo.Record, next task.Notifier, logger *slog.Logger) *Notifier {
	return &Notifier{pub: pub, subject: subject, lookup: lookup, next: next, logger: logger}
}

func (n *Notifier) ItemChanged(id int) {
	if rec := n.lookup(id); rec != nil {
		evt := ChangeEvent(rec.Snapshot())
		if err := n.pub.PublishJSON(n.subject, evt); err != nil {
			n.logger.Error("publish item changed failed", "subject", n.subject, "item", id, "err", err)
		}
	}
	if n.next != nil {
		n.next.ItemChanged(id)
	}
}

// InterestHandler decodes ItemOfInterest messages and runs evaluate (or reset)
// on the presentation context through post.
func InterestHandler(post func(fn func()) bool, evaluate, reset func(id int) error, logger *slog.Logger) func(ctx context.Context, data []byte) {
	return func(_ context.Context, data []byte) {
		var msg schema.ItemOfInterest
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("invalid item of interest message", "err", err)
			return
		}
		action := evaluate
		if msg.Reset {
			action = reset
		}
		ok := post(func() {
			if err := action(msg.Index); err != nil {
				logger.Warn("item of interest rejected", "item", msg.Index, "reset", msg.Reset, "err", err)
			}
		})
		if !ok {
			logger.Debug("presentation loop stopped, dropping interest", "item", msg.Index)
		}
	}
}

// PublishCatalogLoaded announces the loaded catalog.
func PublishCatalogLoaded(pub Publisher, subject, source string, count int) error {
	return pub.PublishJSON(subject, schema.CatalogLoaded{
		ID:         uuid.NewString(),
		Source:     source,
		Count:      count,
		HappenedAt: time.Now().Unix(),
	})
}
