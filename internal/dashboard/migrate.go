package dashboard

import (
	"encoding/json"
	"fmt"
)

// migrateLegacy converts the pre-views document format, a bare JSON
// array of rooms, into the current format.
//
// The legacy format stored room cards under "entities". Migration wraps
// the rooms in the default two-view layout, placing them all under the
// "Stanze" tabs view, and renames "entities" to "cards". The result is
// persisted immediately by the caller so migration runs exactly once.
func migrateLegacy(raw []byte) (*Document, error) {
	var rooms []Room
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, fmt.Errorf("dashboard: parsing legacy document: %w", err)
	}

	for i := range rooms {
		if rooms[i].Cards == nil {
			rooms[i].Cards = rooms[i].LegacyEntities
		}
		if rooms[i].Cards == nil {
			rooms[i].Cards = []Card{}
		}
		rooms[i].LegacyEntities = nil
	}

	doc := DefaultDocument()
	if v, ok := doc.FindView("stanze"); ok {
		v.Rooms = rooms
	}
	return doc, nil
}
