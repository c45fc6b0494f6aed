package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/dverna/casaflow-core/internal/infrastructure/config"
)

// defaultConnectTimeout bounds the initial ping.
const defaultConnectTimeout = 10 * time.Second

// Client streams points to InfluxDB through the non-blocking write
// API. Writes are batched per config; the sink never blocks the
// session loop. Safe for concurrent use.
type Client struct {
	client    influxdb2.Client
	writeAPI  api.WriteAPI
	connected atomic.Bool
}

// Connect verifies the InfluxDB server with a ping and prepares the
// batched write API.
//
// Parameters:
//   - cfg: Telemetry configuration from config.yaml
//   - onError: Receives async write failures; may be nil
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If telemetry is disabled or the server is unreachable
func Connect(cfg config.TelemetryConfig, onError func(error)) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 10
	}

	// #nosec G115 -- values validated above to be positive
	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval)*1000), // seconds to ms
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	c := &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
	}
	c.connected.Store(true)

	// Writes are async; failures arrive on the errors channel.
	if onError != nil {
		go func() {
			for writeErr := range c.writeAPI.Errors() {
				onError(writeErr)
			}
		}()
	}

	return c, nil
}

// Close flushes pending writes and shuts the client down.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.connected.Store(false)
	c.writeAPI.Flush()
	c.client.Close()

	return nil
}

// IsConnected reports whether the client accepts writes.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}
