package domain

import "encoding/json"

// Terminal call statuses recognized inside a signaling payload.
// Detection is a stateless pattern match per event; the hub keeps no
// call-session state.
var terminalCallStatuses = map[string]struct{}{
	"bye":      {},
	"end-call": {},
	"reject":   {},
}

// CallStatus inspects a signaling payload for a string-valued "type"
// field marking the end of a call. It reports the status and whether a
// call record should be persisted for this event.
func CallStatus(payload json.RawMessage) (string, bool) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return "", false
	}
	if _, ok := terminalCallStatuses[probe.Type]; !ok {
		return "", false
	}
	return probe.Type, true
}
