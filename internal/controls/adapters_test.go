package controls

import (
	"sync"
	"testing"
	"time"

	"github.com/dverna/casaflow-core/internal/dashboard"
	"github.com/dverna/casaflow-core/internal/entity"
)

type serviceCall struct {
	domain  string
	service string
	data    map[string]any
}

type mockSink struct {
	mu    sync.Mutex
	calls []serviceCall
}

func (s *mockSink) CallService(domain, service string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, serviceCall{domain, service, data})
	return nil
}

func (s *mockSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *mockSink) last(t *testing.T) serviceCall {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		t.Fatal("no service calls recorded")
	}
	return s.calls[len(s.calls)-1]
}

func lightSnap(attrs entity.Attributes) *entity.Snapshot {
	return &entity.Snapshot{EntityID: "light.soggiorno", State: "on", Attributes: attrs}
}

func TestLightSummarizeBrightness(t *testing.T) {
	a := &lightAdapter{sink: &mockSink{}}
	snap := lightSnap(entity.Attributes{
		"friendly_name": "Soggiorno",
		"brightness":    float64(204),
	})

	s := a.Summarize(snap, nil)
	if s.Name != "Soggiorno" {
		t.Errorf("Name = %q", s.Name)
	}
	if s.StateText != "Accesa · 80%" {
		t.Errorf("StateText = %q, want Accesa · 80%%", s.StateText)
	}
	if !s.Active {
		t.Error("Active = false for a light that is on")
	}

	snap.State = "off"
	if got := a.Summarize(snap, nil).StateText; got != "Spenta" {
		t.Errorf("StateText off = %q, want Spenta", got)
	}
}

func TestLightColourTempSliderUsesKelvin(t *testing.T) {
	a := &lightAdapter{sink: &mockSink{}}
	snap := lightSnap(entity.Attributes{
		"supported_color_modes": []any{"color_temp"},
		"min_mireds":            float64(153),
		"max_mireds":            float64(500),
		"color_temp":            float64(250),
	})

	p := a.BuildDetail(snap, nil)
	c, ok := p.Control("color_temp")
	if !ok {
		t.Fatal("no color_temp control")
	}
	if c.Min != 2000 || c.Max != 6536 {
		t.Errorf("slider range = [%v, %v], want [2000, 6536]", c.Min, c.Max)
	}
	if got := c.Value().(float64); got != 4000 {
		t.Errorf("initial value = %v, want 4000K (250 mireds)", got)
	}
}

func TestLightBrightnessDebounces(t *testing.T) {
	sink := &mockSink{}
	a := &lightAdapter{sink: sink}
	snap := lightSnap(entity.Attributes{"brightness": float64(128)})

	p := a.BuildDetail(snap, nil)
	c, ok := p.Control("brightness")
	if !ok {
		t.Fatal("no brightness control")
	}

	// A drag produces many values; only the trailing one may hit the wire.
	for _, v := range []float64{10, 30, 60, 80} {
		if err := c.Set(v); err != nil {
			t.Fatalf("Set(%v) error = %v", v, err)
		}
	}

	time.Sleep(250 * time.Millisecond)
	if sink.count() != 1 {
		t.Fatalf("service calls = %d, want 1 trailing call", sink.count())
	}
	call := sink.last(t)
	if call.domain != "light" || call.service != "turn_on" {
		t.Errorf("call = %s.%s", call.domain, call.service)
	}
	if got := call.data["brightness_pct"].(float64); got != 80 {
		t.Errorf("brightness_pct = %v, want 80", got)
	}
}

func TestClimateStepperClampsAndCoalesces(t *testing.T) {
	sink := &mockSink{}
	a := &climateAdapter{sink: sink}
	snap := &entity.Snapshot{
		EntityID: "climate.studio",
		State:    "heat",
		Attributes: entity.Attributes{
			"temperature":      float64(21.0),
			"min_temp":         float64(7),
			"max_temp":         float64(30),
			"target_temp_step": float64(0.5),
		},
	}

	p := a.BuildDetail(snap, nil)
	c, ok := p.Control("target_temp")
	if !ok {
		t.Fatal("no target_temp control")
	}
	if got := c.Value().(float64); got != 21.0 {
		t.Fatalf("initial target = %v, want 21.0", got)
	}

	// Two quick taps: the local value steps twice, the wire sees one
	// command with the final figure.
	if err := c.Nudge(+1); err != nil {
		t.Fatalf("Nudge error = %v", err)
	}
	if err := c.Nudge(+1); err != nil {
		t.Fatalf("Nudge error = %v", err)
	}
	if got := c.Value().(float64); got != 22.0 {
		t.Errorf("local value after taps = %v, want 22.0", got)
	}

	time.Sleep(700 * time.Millisecond)
	if sink.count() != 1 {
		t.Fatalf("service calls = %d, want 1", sink.count())
	}
	call := sink.last(t)
	if call.service != "set_temperature" {
		t.Errorf("service = %q", call.service)
	}
	if got := call.data["temperature"].(float64); got != 22.0 {
		t.Errorf("temperature = %v, want 22.0", got)
	}
}

func TestClimateStepperClampsAtMax(t *testing.T) {
	a := &climateAdapter{sink: &mockSink{}}
	snap := &entity.Snapshot{
		EntityID: "climate.studio",
		State:    "heat",
		Attributes: entity.Attributes{
			"temperature": float64(29.8),
			"max_temp":    float64(30),
		},
	}

	p := a.BuildDetail(snap, nil)
	c, _ := p.Control("target_temp")
	if err := c.Nudge(+1); err != nil {
		t.Fatalf("Nudge error = %v", err)
	}
	if got := c.Value().(float64); got != 30.0 {
		t.Errorf("value = %v, want clamped 30.0", got)
	}
}

func TestFocusGuardSkipsHeldControl(t *testing.T) {
	a := &climateAdapter{sink: &mockSink{}}
	snap := &entity.Snapshot{
		EntityID:   "climate.studio",
		State:      "heat",
		Attributes: entity.Attributes{"temperature": float64(21.0)},
	}

	p := a.BuildDetail(snap, nil)
	c, _ := p.Control("target_temp")
	c.SetFocused(true)

	update := snap.DeepCopy()
	update.Attributes["temperature"] = float64(25.0)
	a.RefreshDetail(p, update)

	if got := c.Value().(float64); got != 21.0 {
		t.Errorf("focused control updated to %v, want untouched 21.0", got)
	}

	c.SetFocused(false)
	a.RefreshDetail(p, update)
	if got := c.Value().(float64); got != 25.0 {
		t.Errorf("released control = %v, want refreshed 25.0", got)
	}
}

func TestMediaVolumeIsFractionOnWire(t *testing.T) {
	sink := &mockSink{}
	a := &mediaAdapter{sink: sink}
	snap := &entity.Snapshot{
		EntityID:   "media_player.salotto",
		State:      "playing",
		Attributes: entity.Attributes{"volume_level": float64(0.35)},
	}

	p := a.BuildDetail(snap, nil)
	c, ok := p.Control("volume")
	if !ok {
		t.Fatal("no volume control")
	}
	if got := c.Value().(float64); got != 35 {
		t.Errorf("displayed volume = %v, want 35", got)
	}

	if err := c.Set(float64(50)); err != nil {
		t.Fatalf("Set error = %v", err)
	}
	call := sink.last(t)
	if call.service != "volume_set" {
		t.Errorf("service = %q", call.service)
	}
	if got := call.data["volume_level"].(float64); got != 0.5 {
		t.Errorf("volume_level = %v, want 0.5", got)
	}
}

func TestMediaRemotePadTargetsRemoteEntity(t *testing.T) {
	sink := &mockSink{}
	a := &mediaAdapter{sink: sink}
	snap := &entity.Snapshot{EntityID: "media_player.tv", State: "on", Attributes: entity.Attributes{}}
	card := &dashboard.Card{Type: dashboard.CardEntity, ID: "media_player.tv", RemoteID: "remote.tv"}

	p := a.BuildDetail(snap, card)
	c, ok := p.Control("remote")
	if !ok {
		t.Fatal("no remote control with RemoteID set")
	}
	if err := c.Set("UP"); err != nil {
		t.Fatalf("Set error = %v", err)
	}
	call := sink.last(t)
	if call.domain != "remote" || call.service != "send_command" {
		t.Errorf("call = %s.%s", call.domain, call.service)
	}
	if call.data["entity_id"] != "remote.tv" {
		t.Errorf("entity_id = %v, want remote.tv", call.data["entity_id"])
	}

	// Without a remote id the pad must not exist.
	p2 := a.BuildDetail(snap, nil)
	if _, ok := p2.Control("remote"); ok {
		t.Error("remote control present without RemoteID")
	}
}

func TestCoverButtons(t *testing.T) {
	sink := &mockSink{}
	a := &coverAdapter{sink: sink}
	snap := &entity.Snapshot{
		EntityID:   "cover.tapparella",
		State:      "open",
		Attributes: entity.Attributes{"current_position": float64(70)},
	}

	if got := a.Summarize(snap, nil).StateText; got != "Aperta al 70%" {
		t.Errorf("StateText = %q", got)
	}

	p := a.BuildDetail(snap, nil)
	c, _ := p.Control("motion")
	if err := c.Set("stop_cover"); err != nil {
		t.Fatalf("Set error = %v", err)
	}
	if call := sink.last(t); call.service != "stop_cover" {
		t.Errorf("service = %q", call.service)
	}
	if err := c.Set("explode_cover"); err == nil {
		t.Error("unknown motion accepted")
	}
}

func TestWeatherTranslation(t *testing.T) {
	a := &weatherAdapter{}
	snap := &entity.Snapshot{
		EntityID:   "weather.casa",
		State:      "partlycloudy",
		Attributes: entity.Attributes{"temperature": float64(18.5)},
	}

	s := a.Summarize(snap, nil)
	if s.StateText != "18.5° · Parzialmente nuvoloso" {
		t.Errorf("StateText = %q", s.StateText)
	}
	if s.Icon != "cloud-sun" {
		t.Errorf("Icon = %q", s.Icon)
	}
}

func TestCameraImageURL(t *testing.T) {
	a := &cameraAdapter{baseURL: "http://hub.local:8123"}
	snap := &entity.Snapshot{
		EntityID: "camera.ingresso",
		State:    "idle",
		Attributes: entity.Attributes{
			"entity_picture": "/api/camera_proxy/camera.ingresso?token=abc123",
		},
	}

	s := a.Summarize(snap, nil)
	want := "http://hub.local:8123/api/camera_proxy/camera.ingresso?token=abc123"
	if s.ImageURL != want {
		t.Errorf("ImageURL = %q, want %q", s.ImageURL, want)
	}

	// No base URL means no image rather than a broken relative link.
	bare := &cameraAdapter{}
	if got := bare.Summarize(snap, nil).ImageURL; got != "" {
		t.Errorf("ImageURL without base = %q, want empty", got)
	}
}

func TestBinarySensorDeviceClassWording(t *testing.T) {
	a := &binarySensorAdapter{}
	tests := []struct {
		class string
		state string
		want  string
	}{
		{"door", "on", "Aperta"},
		{"door", "off", "Chiusa"},
		{"motion", "on", "Rilevato"},
		{"motion", "off", "Libero"},
		{"", "on", "Attivo"},
	}
	for _, tt := range tests {
		snap := &entity.Snapshot{
			EntityID:   "binary_sensor.x",
			State:      tt.state,
			Attributes: entity.Attributes{"device_class": tt.class},
		}
		if got := a.Summarize(snap, nil).StateText; got != tt.want {
			t.Errorf("%s/%s = %q, want %q", tt.class, tt.state, got, tt.want)
		}
	}
}

func TestRegistryFallback(t *testing.T) {
	r := NewRegistry(&mockSink{}, "")

	if _, ok := r.ForDomain("vacuum").(*defaultAdapter); !ok {
		t.Error("unknown domain did not get the default adapter")
	}
	if _, ok := r.ForEntity("light.x").(*lightAdapter); !ok {
		t.Error("light entity did not route to the light adapter")
	}

	snap := &entity.Snapshot{EntityID: "vacuum.robot", State: "docked", Attributes: entity.Attributes{}}
	s := r.ForEntity(snap.EntityID).Summarize(snap, nil)
	if s.StateText != "docked" {
		t.Errorf("default StateText = %q, want raw state", s.StateText)
	}
}

func TestQuickActionRouting(t *testing.T) {
	sink := &mockSink{}
	r := NewRegistry(sink, "")

	if err := r.TriggerQuickAction("scene.serata"); err != nil {
		t.Fatalf("TriggerQuickAction error = %v", err)
	}
	if call := sink.last(t); call.domain != "scene" || call.service != "turn_on" {
		t.Errorf("scene call = %s.%s", call.domain, call.service)
	}

	if err := r.TriggerQuickAction("switch.presa"); err != nil {
		t.Fatalf("TriggerQuickAction error = %v", err)
	}
	if call := sink.last(t); call.domain != "switch" || call.service != "toggle" {
		t.Errorf("switch call = %s.%s", call.domain, call.service)
	}
}

func TestHandleTap(t *testing.T) {
	tests := []struct {
		entityID string
		handled  bool
	}{
		{"light.x", true},
		{"switch.x", true},
		{"input_boolean.x", true},
		{"fan.x", true},
		{"media_player.x", true},
		{"climate.x", true},
		{"sensor.x", false},
		{"camera.x", false},
		{"weather.x", false},
	}

	for _, tt := range tests {
		t.Run(tt.entityID, func(t *testing.T) {
			sink := &mockSink{}
			r := NewRegistry(sink, "")

			snap := &entity.Snapshot{EntityID: tt.entityID, State: "on", Attributes: entity.Attributes{}}
			handled, err := r.HandleTap(snap)
			if err != nil {
				t.Fatalf("HandleTap() error = %v", err)
			}
			if handled != tt.handled {
				t.Fatalf("handled = %v, want %v", handled, tt.handled)
			}
			if !tt.handled {
				if sink.count() != 0 {
					t.Errorf("unhandled tap issued %d calls", sink.count())
				}
				return
			}
			call := sink.last(t)
			if call.domain != entity.DomainOf(tt.entityID) || call.service != "toggle" {
				t.Errorf("call = %s.%s, want %s.toggle", call.domain, call.service, entity.DomainOf(tt.entityID))
			}
		})
	}
}

func TestDetailEligibilityDefaults(t *testing.T) {
	r := NewRegistry(&mockSink{}, "")

	tests := []struct {
		name     string
		snap     *entity.Snapshot
		eligible bool
	}{
		{
			name: "colour temperature light",
			snap: lightSnap(entity.Attributes{
				"supported_color_modes": []any{"color_temp"},
			}),
			eligible: true,
		},
		{
			name: "hue saturation light",
			snap: lightSnap(entity.Attributes{
				"supported_color_modes": []any{"hs"},
				"brightness":            float64(128),
			}),
			eligible: true,
		},
		{
			name: "brightness only light",
			snap: lightSnap(entity.Attributes{
				"supported_color_modes": []any{"brightness"},
				"brightness":            float64(128),
			}),
			eligible: false,
		},
		{
			name:     "on off light",
			snap:     lightSnap(entity.Attributes{"supported_color_modes": []any{"onoff"}}),
			eligible: false,
		},
		{
			name:     "climate",
			snap:     &entity.Snapshot{EntityID: "climate.casa", State: "heat", Attributes: entity.Attributes{}},
			eligible: false,
		},
		{
			name:     "cover",
			snap:     &entity.Snapshot{EntityID: "cover.tapparella", State: "open", Attributes: entity.Attributes{}},
			eligible: false,
		},
		{
			name:     "media player",
			snap:     &entity.Snapshot{EntityID: "media_player.tv", State: "playing", Attributes: entity.Attributes{}},
			eligible: false,
		},
		{
			name:     "camera",
			snap:     &entity.Snapshot{EntityID: "camera.ingresso", State: "idle", Attributes: entity.Attributes{}},
			eligible: false,
		},
		{
			name:     "weather",
			snap:     &entity.Snapshot{EntityID: "weather.casa", State: "sunny", Attributes: entity.Attributes{}},
			eligible: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ForEntity(tt.snap.EntityID).SupportsDetail(tt.snap)
			if got != tt.eligible {
				t.Errorf("SupportsDetail() = %v, want %v", got, tt.eligible)
			}
		})
	}
}
