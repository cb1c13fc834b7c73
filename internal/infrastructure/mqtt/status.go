package mqtt

import (
	"encoding/json"
	"time"
)

// Bridge availability states published to the health topic.
const (
	statusOnline  = "online"
	statusOffline = "offline"
)

// Reasons attached to offline statuses so consumers can tell a clean
// shutdown from a crashed bridge (the latter arrives via the broker's
// last-will delivery).
const (
	reasonShutdown = "graceful_shutdown"
	reasonLostConn = "unexpected_disconnect"
)

// statusPayload is the retained health message for the bridge itself.
// Other Gray Logic services watch this topic to decide whether sensor
// state topics are live or stale.
type statusPayload struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func encodeStatus(status, clientID, reason string) []byte {
	payload, err := json.Marshal(statusPayload{
		Status:    status,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		// Marshalling a flat struct of strings cannot fail.
		return nil
	}
	return payload
}
