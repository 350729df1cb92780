// internal/bus/nats.go
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tendant/simple-photolist/internal/photo"
	"github.com/tendant/simple-photolist/internal/task"
)

const clientName = "photolist"

// Subjects names the subjects the photo list publishes and listens on.
type Subjects struct {
	ItemChanged   string
	ItemInterest  string
	CatalogLoaded string
}

func (s Subjects) validate() error {
	var errs []error
	if s.ItemChanged == "" {
		errs = append(errs, errors.New("item changed subject is empty"))
	}
	if s.ItemInterest == "" {
		errs = append(errs, errors.New("item interest subject is empty"))
	}
	if s.CatalogLoaded == "" {
		errs = append(errs, errors.New("catalog loaded subject is empty"))
	}
	return errors.Join(errs...)
}

type Client struct {
	nc       *nats.Conn
	subjects Subjects
	logger   *slog.Logger
}

// Connect dials url and keeps reconnecting for the life of the session.
// Connection changes are logged; publishing while disconnected is buffered
// by the NATS client.
func Connect(url string, subjects Subjects, logger *slog.Logger) (*Client, error) {
	if err := subjects.validate(); err != nil {
		return nil, fmt.Errorf("bus subjects: %w", err)
	}
	logger = logger.With("component", "bus")
	nc, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("disconnected from NATS", "err", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("reconnected to NATS", "nats_url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Client{nc: nc, subjects: subjects, logger: logger}, nil
}

func (c *Client) Close() {
	if c.nc != nil {
		_ = c.nc.Drain()
	}
}

func (c *Client) Conn() *nats.Conn { return c.nc }

func (c *Client) Subjects() Subjects { return c.subjects }

func (c *Client) PublishJSON(subject string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.nc.Publish(subject, b)
}

func (c *Client) SubscribeJSON(subject string, handler func(ctx context.Context, data []byte)) (*nats.Subscription, error) {
	return c.nc.Subscribe(subject, func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		handler(ctx, msg.Data)
	})
}

// ChangeNotifier publishes item changes on the item changed subject before
// forwarding them to next.
func (c *Client) ChangeNotifier(lookup func(id int) *photo.Record, next task.Notifier) *Notifier {
	return NewNotifier(c, c.subjects.ItemChanged, lookup, next, c.logger)
}

// AnnounceCatalog publishes the loaded catalog on the catalog loaded subject.
func (c *Client) AnnounceCatalog(source string, count int) error {
	return PublishCatalogLoaded(c, c.subjects.CatalogLoaded, source, count)
}

// ServeInterest runs evaluate (or reset) for every item of interest message,
// posted to the presentation context.
func (c *Client) ServeInterest(post func(fn func()) bool, evaluate, reset func(id int) error) (*nats.Subscription, error) {
	return c.SubscribeJSON(c.subjects.ItemInterest, InterestHandler(post, evaluate, reset, c.logger))
}
