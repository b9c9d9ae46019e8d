package orchestrator

import (
	"encoding/json"
	"time"
)

const (
	DialogTopic = "agent/dialog"

	HeaderVersion = "0.1"
	MsgVersion    = "0.0.1"

	SubTypeHeartbeat         = "heartbeat"
	SubTypeCoordinationEvent = "Event:dialog_coordination_event"

	// ISO-8601 extended, UTC, microseconds.
	timestampLayout = "2006-01-02T15:04:05.000000Z"
)

func HeartbeatTopic(source string) string { return "status/" + source + "/heartbeats" }
func EventTopic(source string) string     { return "agent/" + source + "/coordination_event" }

type Header struct {
	Timestamp   string `json:"timestamp"`
	MessageType string `json:"message_type"`
	Version     string `json:"version"`
}

type Msg struct {
	Timestamp string `json:"timestamp"`
	SubType   string `json:"sub_type"`
	Source    string `json:"source"`
	Version   string `json:"version"`
}

type Envelope struct {
	Header Header `json:"header"`
	Msg    Msg    `json:"msg"`
	Data   any    `json:"data"`
}

type HeartbeatData struct {
	State string `json:"state"`
}

type CoordinationData struct {
	ID                  string          `json:"id"`
	AnchorLabel         string          `json:"anchor_label"`
	FollowLabel         string          `json:"follow_label"`
	AnchorParticipantID string          `json:"anchor_participant_id"`
	FollowParticipantID string          `json:"follow_participant_id"`
	AnchorASRMsgID      json.RawMessage `json:"anchor_asr_msg_id,omitempty"`
	FollowASRMsgID      json.RawMessage `json:"follow_asr_msg_id,omitempty"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func newEnvelope(now time.Time, source, subType string, data any) Envelope {
	ts := formatTimestamp(now)
	return Envelope{
		Header: Header{Timestamp: ts, MessageType: "status", Version: HeaderVersion},
		Msg:    Msg{Timestamp: ts, SubType: subType, Source: source, Version: MsgVersion},
		Data:   data,
	}
}
