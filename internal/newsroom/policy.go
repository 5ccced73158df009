// Package newsroom runs the editorial meeting: who speaks next, when a
// decision has been made, and what happens when the desk cannot agree.
package newsroom

import (
	"github.com/techronicle/newsroom/internal/persona"
	"github.com/techronicle/newsroom/internal/transcript"
)

const (
	// DefaultSoftCap is the turn count after which the floor is steered
	// toward the decision maker instead of another review round.
	DefaultSoftCap = 8
	// DefaultHardCap bounds the total number of turns in a session,
	// including the wind-down.
	DefaultHardCap = 15

	// antiLoopWindow is the number of consecutive turns one speaker may
	// take before the floor is forced elsewhere.
	antiLoopWindow = 3
)

// Policy decides who speaks next from the turn history alone. It is
// deterministic: the same history always yields the same speaker.
type Policy struct {
	registry *persona.Registry
	softCap  int
	hardCap  int
}

// NewPolicy builds a turn policy over the given registry. Caps at or
// below zero fall back to the defaults.
func NewPolicy(registry *persona.Registry, softCap, hardCap int) *Policy {
	if softCap <= 0 {
		softCap = DefaultSoftCap
	}
	if hardCap <= 0 {
		hardCap = DefaultHardCap
	}
	if hardCap < softCap {
		hardCap = softCap
	}
	return &Policy{registry: registry, softCap: softCap, hardCap: hardCap}
}

// HardCap returns the configured total-turn bound.
func (p *Policy) HardCap() int { return p.hardCap }

// NextSpeaker returns the participant who should take the next turn,
// or false when the session is over. decided reports whether a
// publication decision has been recorded.
func (p *Policy) NextSpeaker(turns []transcript.Turn, decided bool) (persona.Participant, bool) {
	if len(turns) == 0 {
		if c, ok := p.registry.ByRole(persona.RoleCollector); ok {
			return c, true
		}
		return p.registry.All()[0], true
	}
	last := turns[len(turns)-1]
	lastRole := persona.Role(last.Role)

	// Once a decision lands the publisher gets one closing turn.
	if decided {
		if lastRole == persona.RolePublisher {
			return persona.Participant{}, false
		}
		if pub, ok := p.registry.ByRole(persona.RolePublisher); ok {
			return pub, true
		}
		return persona.Participant{}, false
	}

	// Hard cap wind-down: force the decision maker, then the publisher,
	// so the session never exceeds hardCap turns.
	if len(turns) >= p.hardCap-2 {
		switch lastRole {
		case persona.RoleDecisionMaker:
			if pub, ok := p.registry.ByRole(persona.RolePublisher); ok {
				return pub, true
			}
			return persona.Participant{}, false
		case persona.RolePublisher:
			return persona.Participant{}, false
		default:
			if dm, ok := p.registry.ByRole(persona.RoleDecisionMaker); ok {
				return dm, true
			}
			return persona.Participant{}, false
		}
	}

	// Anti-loop: a speaker who held the floor for the whole window
	// yields to the next participant in registry order.
	if p.monopolized(turns, last.Speaker) {
		return p.registry.After(last.Speaker), true
	}

	// Soft cap: long meetings stop cycling reviews and go to the
	// decision maker.
	if len(turns) >= p.softCap && lastRole != persona.RoleDecisionMaker && lastRole != persona.RolePublisher {
		if dm, ok := p.registry.ByRole(persona.RoleDecisionMaker); ok {
			return dm, true
		}
	}

	var next persona.Role
	switch lastRole {
	case persona.RoleCollector:
		next = persona.RoleAnalyst
	case persona.RoleAnalyst:
		next = persona.RoleVerifier
	case persona.RoleVerifier:
		next = persona.RoleAudienceVoice
	case persona.RoleAudienceVoice:
		next = persona.RoleDecisionMaker
	case persona.RoleDecisionMaker:
		// No decision yet: another audience pass before asking again.
		next = persona.RoleAudienceVoice
	case persona.RolePublisher:
		return persona.Participant{}, false
	default:
		next = persona.RoleDecisionMaker
	}
	if sp, ok := p.registry.ByRole(next); ok {
		return sp, true
	}
	return p.registry.After(last.Speaker), true
}

func (p *Policy) monopolized(turns []transcript.Turn, speaker string) bool {
	window := antiLoopWindow
	if sp, err := p.registry.Get(speaker); err == nil && sp.ReplyBudget < window {
		window = sp.ReplyBudget
	}
	if len(turns) < window {
		return false
	}
	for _, t := range turns[len(turns)-window:] {
		if t.Speaker != speaker {
			return false
		}
	}
	return true
}
