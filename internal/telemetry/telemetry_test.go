package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/dverna/casaflow-core/internal/entity"
	"github.com/dverna/casaflow-core/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.TelemetryConfig{Enabled: false}, nil)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestRecordStateRejectsInvalidSnapshot(t *testing.T) {
	c := &Client{}

	if err := c.RecordState(context.Background(), nil); !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("RecordState(nil) error = %v, want ErrInvalidSnapshot", err)
	}
	if err := c.RecordState(context.Background(), &entity.Snapshot{}); !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("RecordState(empty id) error = %v, want ErrInvalidSnapshot", err)
	}
}

func TestRecordStateSkipsWhenDisconnected(t *testing.T) {
	c := &Client{}

	snap := &entity.Snapshot{EntityID: "sensor.temp", State: "21.5"}
	if err := c.RecordState(context.Background(), snap); err != nil {
		t.Errorf("RecordState() while disconnected error = %v, want nil", err)
	}
}

func TestNumericState(t *testing.T) {
	tests := []struct {
		name  string
		snap  *entity.Snapshot
		want  float64
		found bool
	}{
		{
			name:  "numeric sensor state",
			snap:  &entity.Snapshot{EntityID: "sensor.temp", State: "21.5"},
			want:  21.5,
			found: true,
		},
		{
			name:  "negative value",
			snap:  &entity.Snapshot{EntityID: "sensor.temp", State: "-3.2"},
			want:  -3.2,
			found: true,
		},
		{
			name: "dimmer brightness attribute",
			snap: &entity.Snapshot{
				EntityID:   "light.soggiorno",
				State:      "on",
				Attributes: entity.Attributes{"brightness": float64(128)},
			},
			want:  128,
			found: true,
		},
		{
			name: "thermostat current temperature",
			snap: &entity.Snapshot{
				EntityID:   "climate.casa",
				State:      "heat",
				Attributes: entity.Attributes{"current_temperature": float64(19.5)},
			},
			want:  19.5,
			found: true,
		},
		{
			name:  "textual state without numeric attributes",
			snap:  &entity.Snapshot{EntityID: "switch.presa", State: "off"},
			found: false,
		},
		{
			name:  "unavailable state",
			snap:  &entity.Snapshot{EntityID: "sensor.temp", State: "unavailable"},
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := numericState(tt.snap)
			if ok != tt.found {
				t.Fatalf("numericState() found = %v, want %v", ok, tt.found)
			}
			if ok && got != tt.want {
				t.Errorf("numericState() = %v, want %v", got, tt.want)
			}
		})
	}
}
