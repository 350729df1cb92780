// pkg/schema/events.go
package schema

type FailureType string

const (
	FailureTypeTransport FailureType = "transport"
	FailureTypeTransform FailureType = "transform"
	FailureTypeUnknown   FailureType = "unknown"
)

// ItemChanged is published once per state transition of a list item.
type ItemChanged struct {
	ID          string      `json:"id"`
	Index       int         `json:"index"`
	Name        string      `json:"name"`
	URL         string      `json:"url"`
	State       string      `json:"state"`
	RawBytes    int         `json:"raw_bytes,omitempty"`
	Width       int         `json:"width,omitempty"`
	Height      int         `json:"height,omitempty"`
	Path        string      `json:"path,omitempty"`
	Error       string      `json:"error,omitempty"`
	FailureType FailureType `json:"failure_type,omitempty"`
	HappenedAt  int64       `json:"happened_at"`
}

// ItemOfInterest asks the list to (re)evaluate an item, e.g. because a remote
// viewer scrolled it into view.
type ItemOfInterest struct {
	Index      int   `json:"index"`
	Reset      bool  `json:"reset,omitempty"`
	HappenedAt int64 `json:"happened_at"`
}

type CatalogLoaded struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Count      int    `json:"count"`
	HappenedAt int64  `json:"happened_at"`
}
