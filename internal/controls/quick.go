package controls

import (
	"github.com/dverna/casaflow-core/internal/entity"
)

// TriggerQuickAction fires one quick-action reference: scenes and
// scripts activate, toggleable domains flip. Anything else goes through
// the hub's generic toggle so a mis-typed reference still does the
// least surprising thing.
func (r *Registry) TriggerQuickAction(entityID string) error {
	target := map[string]any{"entity_id": entityID}

	switch entity.DomainOf(entityID) {
	case "scene":
		return r.sink.CallService("scene", "turn_on", target)
	case "script":
		return r.sink.CallService("script", "turn_on", target)
	case "light", "switch", "input_boolean", "fan":
		return r.sink.CallService(entity.DomainOf(entityID), "toggle", target)
	default:
		return r.sink.CallService("homeassistant", "toggle", target)
	}
}

// HandleTap is the card-tap action for toggleable domains, media
// players and thermostats included. Domains without a tap action
// return false and do nothing.
func (r *Registry) HandleTap(snap *entity.Snapshot) (bool, error) {
	domain := snap.Domain()
	switch domain {
	case "light", "switch", "input_boolean", "fan", "media_player", "climate":
		err := r.sink.CallService(domain, "toggle", map[string]any{
			"entity_id": snap.EntityID,
		})
		return true, err
	default:
		return false, nil
	}
}
