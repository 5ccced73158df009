// Package protocol defines the wire payloads for the live session
// watch websocket.
package protocol

import (
	"github.com/techronicle/newsroom/internal/transcript"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeSnapshot         MessageType = "snapshot"
	TypeTurnAppended     MessageType = "turn_appended"
	TypeDecisionRecorded MessageType = "decision_recorded"
	TypeSessionFinalized MessageType = "session_finalized"
)

// Snapshot carries the session state at subscribe time so a watcher
// joining mid-meeting sees a consistent prefix.
type Snapshot struct {
	Type      MessageType        `json:"type"`
	SessionID string             `json:"session_id"`
	Summary   transcript.Summary `json:"summary"`
}

type TurnAppended struct {
	Type      MessageType     `json:"type"`
	SessionID string          `json:"session_id"`
	Turn      transcript.Turn `json:"turn"`
}

type DecisionRecorded struct {
	Type      MessageType         `json:"type"`
	SessionID string              `json:"session_id"`
	Decision  transcript.Decision `json:"decision"`
}

type SessionFinalized struct {
	Type      MessageType        `json:"type"`
	SessionID string             `json:"session_id"`
	Summary   transcript.Summary `json:"summary"`
}

// FromEvent maps a transcript event to its wire payload, or nil for
// event types that do not go over the wire.
func FromEvent(sessionID string, ev transcript.Event) any {
	switch ev.Type {
	case transcript.EventTurnAppended:
		if ev.Turn == nil {
			return nil
		}
		return TurnAppended{Type: TypeTurnAppended, SessionID: sessionID, Turn: *ev.Turn}
	case transcript.EventDecisionRecorded:
		if ev.Decision == nil {
			return nil
		}
		return DecisionRecorded{Type: TypeDecisionRecorded, SessionID: sessionID, Decision: *ev.Decision}
	case transcript.EventSessionFinalized:
		if ev.Summary == nil {
			return nil
		}
		return SessionFinalized{Type: TypeSessionFinalized, SessionID: sessionID, Summary: *ev.Summary}
	default:
		return nil
	}
}
