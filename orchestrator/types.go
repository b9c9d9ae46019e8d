package orchestrator

import (
	"encoding/json"

	cfg "github.com/maastricht-university/dialog-coordination/config"
)

// ServerParticipant is the reserved sender whose messages are never matched.
const ServerParticipant = "Server"

type Extraction struct {
	Labels []string `json:"labels"`
}

// HasLabel reports whether label is present verbatim.
func (e Extraction) HasLabel(label string) bool {
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}

type Utterance struct {
	ParticipantID string          `json:"participant_id"`
	ASRMsgID      json.RawMessage `json:"asr_msg_id,omitempty"` // passthrough
	Timestamp     json.RawMessage `json:"timestamp,omitempty"`  // passthrough
	Extractions   []Extraction    `json:"extractions"`
}

// HasLabel reports whether any extraction of u carries label.
func (u Utterance) HasLabel(label string) bool {
	for _, e := range u.Extractions {
		if e.HasLabel(label) {
			return true
		}
	}
	return false
}

type Match struct {
	Pair     cfg.LabelPair
	Anchor   Utterance
	Follower Utterance
}
