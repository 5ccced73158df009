// Package persona defines the editorial meeting participants and the
// registry used to look them up by name or role.
package persona

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the editorial function a participant performs in a session.
type Role string

const (
	RoleCollector     Role = "collector"
	RoleAnalyst       Role = "analyst"
	RoleVerifier      Role = "verifier"
	RoleAudienceVoice Role = "audience_voice"
	RoleDecisionMaker Role = "decision_maker"
	RolePublisher     Role = "publisher"
)

// ErrUnknownPersona is returned when a lookup names a participant that
// is not in the registry.
var ErrUnknownPersona = errors.New("unknown persona")

// Participant is one member of the editorial meeting. Temperature and
// MaxTokens tune the model call for this speaker; ReplyBudget bounds how
// many consecutive turns the speaker may take before the floor is handed
// to someone else.
type Participant struct {
	Name         string
	Title        string
	Role         Role
	SystemPrompt string
	Temperature  float32
	MaxTokens    int
	ReplyBudget  int
}

// Registry holds the participants of a session in a fixed order. The
// order matters: it is the tiebreak used when the turn policy has to
// hand the floor to "the next participant".
type Registry struct {
	order  []string
	byName map[string]Participant
}

// NewRegistry builds a registry from the given participants, preserving
// their order. Duplicate names and empty roles are rejected.
func NewRegistry(participants ...Participant) (*Registry, error) {
	if len(participants) == 0 {
		return nil, errors.New("persona: registry needs at least one participant")
	}
	r := &Registry{byName: make(map[string]Participant, len(participants))}
	for _, p := range participants {
		if p.Name == "" {
			return nil, errors.New("persona: participant without a name")
		}
		if p.Role == "" {
			return nil, fmt.Errorf("persona: participant %q without a role", p.Name)
		}
		if _, dup := r.byName[p.Name]; dup {
			return nil, fmt.Errorf("persona: duplicate participant %q", p.Name)
		}
		if p.ReplyBudget <= 0 {
			p.ReplyBudget = 3
		}
		if p.MaxTokens <= 0 {
			p.MaxTokens = 400
		}
		r.order = append(r.order, p.Name)
		r.byName[p.Name] = p
	}
	return r, nil
}

// Get returns the participant with the given name. The lookup is
// case-insensitive so transcripts and wire payloads can use either form.
func (r *Registry) Get(name string) (Participant, error) {
	if p, ok := r.byName[name]; ok {
		return p, nil
	}
	for _, n := range r.order {
		if strings.EqualFold(n, name) {
			return r.byName[n], nil
		}
	}
	return Participant{}, fmt.Errorf("%w: %q", ErrUnknownPersona, name)
}

// ByRole returns the first participant holding the given role.
func (r *Registry) ByRole(role Role) (Participant, bool) {
	for _, n := range r.order {
		if r.byName[n].Role == role {
			return r.byName[n], true
		}
	}
	return Participant{}, false
}

// All returns the participants in registry order.
func (r *Registry) All() []Participant {
	out := make([]Participant, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.byName[n])
	}
	return out
}

// Names returns the participant names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports the number of participants.
func (r *Registry) Len() int { return len(r.order) }

// After returns the participant following name in registry order,
// skipping name itself. Used when the turn policy forces a speaker
// change and needs "anyone but the last speaker".
func (r *Registry) After(name string) Participant {
	for i, n := range r.order {
		if strings.EqualFold(n, name) {
			next := r.order[(i+1)%len(r.order)]
			return r.byName[next]
		}
	}
	return r.byName[r.order[0]]
}
