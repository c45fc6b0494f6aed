// Package telemetry streams numeric entity states to InfluxDB.
//
// It wraps the official influxdb-client-go v2 library and plugs into
// the session loop as a state sink: every accepted state change is
// offered, and the ones carrying a chartable number are written as
// points under the entity_state measurement.
//
// # Usage
//
//	client, err := telemetry.Connect(cfg.Telemetry, func(err error) {
//	    log.Error("InfluxDB write failed", "error", err)
//	})
//	if err != nil {
//	    // telemetry is optional; log and continue without it
//	}
//	defer client.Close()
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are non-blocking and
// batched according to config (batch_size, flush_interval); async write
// failures are delivered to the callback passed to Connect.
package telemetry
