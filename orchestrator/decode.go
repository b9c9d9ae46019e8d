package orchestrator

import (
	"encoding/json"
	"errors"
	"fmt"
)

type inboundExtraction struct {
	Labels *[]string `json:"labels"`
}

type inboundMessage struct {
	Header *struct {
		Timestamp json.RawMessage `json:"timestamp"`
	} `json:"header"`
	Data *struct {
		ParticipantID *string              `json:"participant_id"`
		ASRMsgID      json.RawMessage      `json:"asr_msg_id"`
		Extractions   *[]inboundExtraction `json:"extractions"`
	} `json:"data"`
}

// Decode turns an agent/dialog payload into an Utterance.
// Messages from ServerParticipant decode successfully but come back with
// ErrFilteredSender so callers can drop them quietly.
func Decode(payload []byte) (Utterance, error) {
	if !json.Valid(payload) {
		return Utterance{}, &DecodeError{Err: errors.New("invalid JSON")}
	}

	var in inboundMessage
	if err := json.Unmarshal(payload, &in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "$"
			}
			return Utterance{}, schemaErr(field, fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value), nil)
		}
		return Utterance{}, &DecodeError{Err: err}
	}

	if in.Data == nil {
		return Utterance{}, schemaErr("data", "missing", nil)
	}
	if in.Data.ParticipantID == nil {
		return Utterance{}, schemaErr("data.participant_id", "missing", nil)
	}
	if in.Data.Extractions == nil {
		return Utterance{}, schemaErr("data.extractions", "missing", nil)
	}

	u := Utterance{
		ParticipantID: *in.Data.ParticipantID,
		ASRMsgID:      in.Data.ASRMsgID,
		Extractions:   make([]Extraction, 0, len(*in.Data.Extractions)),
	}
	if in.Header != nil {
		u.Timestamp = in.Header.Timestamp
	}
	for i, e := range *in.Data.Extractions {
		if e.Labels == nil {
			return Utterance{}, schemaErr(fmt.Sprintf("data.extractions[%d].labels", i), "missing", nil)
		}
		u.Extractions = append(u.Extractions, Extraction{Labels: *e.Labels})
	}

	if u.ParticipantID == ServerParticipant {
		return u, ErrFilteredSender
	}
	return u, nil
}
