package dashboard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Service invocation used to persist the document. The hub side runs a
// matching shell-command service that writes the payload to disk.
const (
	saverDomain  = "dashboard_saver"
	saverService = "save_config"
)

// CommandSink is the outbound command primitive the persister needs.
// *hub.Client satisfies it.
type CommandSink interface {
	CallService(domain, service string, data map[string]any) error
}

// HTTPLoader fetches the stored document over HTTP with a cache-busting
// query parameter, so a stale intermediary never serves yesterday's
// layout.
type HTTPLoader struct {
	// URL is the document endpoint, typically a static file served by
	// the hub (for example /local/dashboard_config.json).
	URL string

	// Client overrides the HTTP client. Nil uses a client with a 10s
	// timeout.
	Client *http.Client

	now func() time.Time
}

// NewHTTPLoader creates a loader for the given document URL.
func NewHTTPLoader(url string) *HTTPLoader {
	return &HTTPLoader{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

// Load fetches the document bytes. A 404 maps to ErrNotFound so the
// manager can fall back to the default layout.
func (l *HTTPLoader) Load(ctx context.Context) ([]byte, error) {
	url := fmt.Sprintf("%s?t=%d", l.URL, l.clock().UnixMilli())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dashboard: building request: %w", err)
	}

	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dashboard: fetching document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dashboard: fetching document: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dashboard: reading document: %w", err)
	}
	return body, nil
}

func (l *HTTPLoader) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}

// ServicePersister writes the document through the hub's saver service.
// The write is fire-and-forget like every other command; the document
// echoing back on the holder entity is the only acknowledgement.
type ServicePersister struct {
	sink CommandSink
}

// NewServicePersister creates a persister on top of a command sink.
func NewServicePersister(sink CommandSink) *ServicePersister {
	return &ServicePersister{sink: sink}
}

// Persist sends the serialized document to the saver service.
func (p *ServicePersister) Persist(content []byte) error {
	return p.sink.CallService(saverDomain, saverService, map[string]any{
		"content": string(content),
	})
}
