// Package presence announces the dashboard's availability over MQTT.
//
// A wall panel that crashes looks exactly like one whose screen is
// off. Publishing a retained online/offline status (with a broker-side
// Last Will for the crash case) lets automations and monitoring tell
// the difference.
//
// The announcer is optional: when presence is disabled in config,
// Connect returns ErrDisabled and the rest of the system runs without
// it.
package presence
