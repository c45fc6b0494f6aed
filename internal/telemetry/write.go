package telemetry

import (
	"context"
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/dverna/casaflow-core/internal/entity"
)

// RecordState writes the numeric value of a state change, if it has one.
//
// Non-numeric states (on/off, weather conditions, media titles) are
// skipped silently: the local history repository keeps the full record,
// InfluxDB only gets values worth charting. The write is non-blocking;
// data is batched and sent asynchronously, so this method is safe to
// call from the session loop on every accepted state change.
func (c *Client) RecordState(_ context.Context, snap *entity.Snapshot) error {
	if snap == nil || snap.EntityID == "" {
		return ErrInvalidSnapshot
	}
	if !c.IsConnected() {
		return nil
	}

	value, ok := numericState(snap)
	if !ok {
		return nil
	}

	tags := map[string]string{
		"entity_id": snap.EntityID,
		"domain":    snap.Domain(),
	}
	if class, ok := snap.Attributes.String("device_class"); ok && class != "" {
		tags["device_class"] = class
	}
	if unit, ok := snap.Attributes.String("unit_of_measurement"); ok && unit != "" {
		tags["unit"] = unit
	}

	point := write.NewPoint(
		"entity_state",
		tags,
		map[string]interface{}{"value": value},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)

	return nil
}

// numericState extracts a chartable value from a snapshot.
//
// A state that parses as a float wins outright (sensors). Otherwise a
// handful of well-known numeric attributes are tried, so dimmer levels
// and thermostat readings land in the series even though their primary
// state is a word.
func numericState(snap *entity.Snapshot) (float64, bool) {
	if v, err := strconv.ParseFloat(snap.State, 64); err == nil {
		return v, true
	}

	for _, key := range []string{"current_temperature", "brightness", "volume_level"} {
		if v, ok := snap.Attributes.Float(key); ok {
			return v, true
		}
	}

	return 0, false
}
