// Package transcript keeps the append-only record of an editorial
// session: every turn, every decision, and the finalized summary.
package transcript

import (
	"errors"
	"sync"
	"time"

	"github.com/techronicle/newsroom/internal/articles"
)

// ErrAlreadyFinalized is returned on any mutation after Finalize.
var ErrAlreadyFinalized = errors.New("transcript: session already finalized")

// Turn is one utterance in the session. Seq starts at 1 and never has
// gaps. Synthetic marks turns the driver fabricated, either because a
// speaker's model call failed twice or because a resolution had to be
// forced.
type Turn struct {
	Seq        int       `json:"seq"`
	Speaker    string    `json:"speaker"`
	Role       string    `json:"role"`
	Text       string    `json:"text"`
	ProducedAt time.Time `json:"produced_at"`
	Synthetic  bool      `json:"synthetic,omitempty"`
}

// Decision records an approval of one or more items for publication.
type Decision struct {
	TurnSeq       int       `json:"turn_seq"`
	DecisionMaker string    `json:"decision_maker"`
	ItemIDs       []string  `json:"item_ids"`
	Forced        bool      `json:"forced,omitempty"`
	DecidedAt     time.Time `json:"decided_at"`
}

// EventType tags the events delivered to live watchers.
type EventType string

const (
	EventTurnAppended     EventType = "turn_appended"
	EventDecisionRecorded EventType = "decision_recorded"
	EventSessionFinalized EventType = "session_finalized"
)

// Event is one change notification for subscribers. Exactly one of the
// payload fields is set, matching Type.
type Event struct {
	Type     EventType
	Turn     *Turn
	Decision *Decision
	Summary  *Summary
}

// Summary is the read model of a session. It is safe to build
// mid-session; Finalized tells the reader whether the record can still
// grow.
type Summary struct {
	SessionID     string          `json:"session_id"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at,omitempty"`
	Finalized     bool            `json:"finalized"`
	Participants  []string        `json:"participants"`
	Turns         []Turn          `json:"turns"`
	Decisions     []Decision      `json:"decisions"`
	Items         []articles.Item `json:"items"`
	SelectedItems []articles.Item `json:"selected_items"`
	SpeakerCounts map[string]int  `json:"speaker_counts"`
	Forced        bool            `json:"forced"`
}

// Record is the mutable session log. Appends come from a single driver
// goroutine; reads and subscriptions may come from any goroutine.
type Record struct {
	mu            sync.RWMutex
	id            string
	startedAt     time.Time
	finishedAt    time.Time
	participants  []string
	items         []articles.Item
	turns         []Turn
	decisions     []Decision
	speakerCounts map[string]int
	finalized     bool
	subs          map[int]*subscriber
	nextSub       int
}

// subscriber wraps a watcher channel so it is closed exactly once,
// whether by the watcher cancelling or by the record dropping it.
type subscriber struct {
	ch   chan Event
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// NewRecord opens a session record over the given slate of items.
func NewRecord(id string, participants []string, items []articles.Item) *Record {
	ps := make([]string, len(participants))
	copy(ps, participants)
	its := make([]articles.Item, len(items))
	copy(its, items)
	return &Record{
		id:            id,
		startedAt:     time.Now().UTC(),
		participants:  ps,
		items:         its,
		speakerCounts: make(map[string]int),
		subs:          make(map[int]*subscriber),
	}
}

// ID returns the session identifier.
func (r *Record) ID() string { return r.id }

// Items returns the slate the session is deliberating over.
func (r *Record) Items() []articles.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]articles.Item, len(r.items))
	copy(out, r.items)
	return out
}

// Append adds a turn and returns it with its sequence number assigned.
func (r *Record) Append(speaker, role, text string, synthetic bool) (Turn, error) {
	r.mu.Lock()
	if r.finalized {
		r.mu.Unlock()
		return Turn{}, ErrAlreadyFinalized
	}
	turn := Turn{
		Seq:        len(r.turns) + 1,
		Speaker:    speaker,
		Role:       role,
		Text:       text,
		ProducedAt: time.Now().UTC(),
		Synthetic:  synthetic,
	}
	r.turns = append(r.turns, turn)
	r.speakerCounts[speaker]++
	r.mu.Unlock()

	r.notify(Event{Type: EventTurnAppended, Turn: &turn})
	return turn, nil
}

// AppendDecision records a publication decision.
func (r *Record) AppendDecision(d Decision) error {
	r.mu.Lock()
	if r.finalized {
		r.mu.Unlock()
		return ErrAlreadyFinalized
	}
	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now().UTC()
	}
	r.decisions = append(r.decisions, d)
	r.mu.Unlock()

	r.notify(Event{Type: EventDecisionRecorded, Decision: &d})
	return nil
}

// Turns returns a copy of the turn log so far.
func (r *Record) Turns() []Turn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Turn, len(r.turns))
	copy(out, r.turns)
	return out
}

// Len reports the number of turns taken.
func (r *Record) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.turns)
}

// Decisions returns a copy of the decisions recorded so far.
func (r *Record) Decisions() []Decision {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Decision, len(r.decisions))
	copy(out, r.decisions)
	return out
}

// HasDecision reports whether at least one decision has been recorded.
func (r *Record) HasDecision() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.decisions) > 0
}

// StartedAt returns the session start time.
func (r *Record) StartedAt() time.Time { return r.startedAt }

// Summary builds the read model of the session as it stands.
func (r *Record) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summaryLocked()
}

func (r *Record) summaryLocked() Summary {
	s := Summary{
		SessionID:     r.id,
		StartedAt:     r.startedAt,
		FinishedAt:    r.finishedAt,
		Finalized:     r.finalized,
		Participants:  append([]string(nil), r.participants...),
		Turns:         append([]Turn(nil), r.turns...),
		Decisions:     append([]Decision(nil), r.decisions...),
		Items:         append([]articles.Item(nil), r.items...),
		SpeakerCounts: make(map[string]int, len(r.speakerCounts)),
	}
	for k, v := range r.speakerCounts {
		s.SpeakerCounts[k] = v
	}
	byID := make(map[string]articles.Item, len(r.items))
	for _, it := range r.items {
		byID[it.ID] = it
	}
	seen := make(map[string]bool)
	for _, d := range r.decisions {
		if d.Forced {
			s.Forced = true
		}
		for _, id := range d.ItemIDs {
			if it, ok := byID[id]; ok && !seen[id] {
				seen[id] = true
				s.SelectedItems = append(s.SelectedItems, it)
			}
		}
	}
	return s
}

// Finalize closes the record and returns the final summary. A second
// call fails with ErrAlreadyFinalized; the record stays readable.
func (r *Record) Finalize() (Summary, error) {
	r.mu.Lock()
	if r.finalized {
		r.mu.Unlock()
		return Summary{}, ErrAlreadyFinalized
	}
	r.finalized = true
	r.finishedAt = time.Now().UTC()
	s := r.summaryLocked()
	r.mu.Unlock()

	r.notify(Event{Type: EventSessionFinalized, Summary: &s})
	return s, nil
}

// Subscribe registers a watcher. Events are delivered in order on a
// buffered channel. A watcher that falls behind is dropped: its channel
// is closed rather than stalling the session, and it resyncs by reading
// Summary. The returned cancel func also closes the channel.
func (r *Record) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	sub := &subscriber{ch: make(chan Event, buffer)}
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = sub
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

func (r *Record) notify(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, sub := range r.subs {
		select {
		case sub.ch <- ev:
		default:
			delete(r.subs, id)
			sub.close()
		}
	}
}
