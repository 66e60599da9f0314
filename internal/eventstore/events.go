package eventstore

import (
	"context"
	"encoding/json"
	"time"
)

// Event types.
const (
	TypeBuildStarted   = "BuildStarted"
	TypeStageCompleted = "StageCompleted"
	TypeBuildCompleted = "BuildCompleted"
)

// BuildStartedPayload is recorded when a build begins.
type BuildStartedPayload struct {
	Mode    string   `json:"mode"`
	Commit  string   `json:"commit,omitempty"`
	Plugins []string `json:"plugins"`
}

// StageCompletedPayload is recorded after every stage, including failed ones.
type StageCompletedPayload struct {
	Stage      string `json:"stage"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// BuildCompletedPayload is recorded once the build reaches a final outcome.
type BuildCompletedPayload struct {
	Outcome    string         `json:"outcome"`
	Mode       string         `json:"mode"`
	Commit     string         `json:"commit,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
	Chunks     map[string]int `json:"chunks,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// AppendJSON marshals payload and appends it as an event of eventType.
func AppendJSON(ctx context.Context, s Store, buildID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return storeError(err, "marshal "+eventType+" payload")
	}
	return s.Append(ctx, buildID, eventType, data, nil)
}

// Decode unmarshals an event payload into out.
func Decode(e Event, out any) error {
	if err := json.Unmarshal(e.Payload(), out); err != nil {
		return storeError(err, "unmarshal "+e.Type()+" payload")
	}
	return nil
}
