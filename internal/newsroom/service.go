package newsroom

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/techronicle/newsroom/internal/articles"
	"github.com/techronicle/newsroom/internal/brain"
	"github.com/techronicle/newsroom/internal/observability"
	"github.com/techronicle/newsroom/internal/persona"
	"github.com/techronicle/newsroom/internal/reliability"
	"github.com/techronicle/newsroom/internal/transcript"
)

const (
	// DefaultTurnTimeout bounds a single model call.
	DefaultTurnTimeout = 90 * time.Second

	defaultRetryBase = 2 * time.Second
	retryCap         = 15 * time.Second
)

// Archiver persists finished sessions. The store package satisfies it.
type Archiver interface {
	SaveSession(ctx context.Context, summary transcript.Summary) error
}

// PublicationSink delivers the approved items somewhere after the
// session closes. The slackpub package satisfies it.
type PublicationSink interface {
	Publish(ctx context.Context, selected []articles.Item, summary transcript.Summary) error
}

// ServiceConfig wires a Service together. Registry and Adapter are
// required; everything else has workable defaults or is optional.
type ServiceConfig struct {
	Registry *persona.Registry
	Adapter  brain.Adapter
	Metrics  *observability.Metrics
	Archive  Archiver
	Sink     PublicationSink

	SoftCap     int
	HardCap     int
	TurnTimeout time.Duration
	RetryBase   time.Duration
	Lexicon     []string
}

// Service runs editorial sessions end to end: it drives the turn loop,
// detects and enforces decisions, archives the transcript, and hands
// approved items to the publication sink.
type Service struct {
	registry *persona.Registry
	adapter  brain.Adapter
	policy   *Policy
	detector *Detector
	metrics  *observability.Metrics
	archive  Archiver
	sink     PublicationSink

	turnTimeout time.Duration
	retryBase   time.Duration
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Registry == nil {
		return nil, errors.New("newsroom: registry is required")
	}
	if cfg.Adapter == nil {
		return nil, errors.New("newsroom: adapter is required")
	}
	if _, ok := cfg.Registry.ByRole(persona.RoleDecisionMaker); !ok {
		return nil, errors.New("newsroom: registry has no decision maker")
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics("newsroom")
	}
	turnTimeout := cfg.TurnTimeout
	if turnTimeout <= 0 {
		turnTimeout = DefaultTurnTimeout
	}
	retryBase := cfg.RetryBase
	if retryBase <= 0 {
		retryBase = defaultRetryBase
	}
	return &Service{
		registry:    cfg.Registry,
		adapter:     cfg.Adapter,
		policy:      NewPolicy(cfg.Registry, cfg.SoftCap, cfg.HardCap),
		detector:    NewDetector(cfg.Lexicon),
		metrics:     metrics,
		archive:     cfg.Archive,
		sink:        cfg.Sink,
		turnTimeout: turnTimeout,
		retryBase:   retryBase,
	}, nil
}

// Run is a session in flight. The record can be read and subscribed to
// while the driver is still appending turns.
type Run struct {
	Record *transcript.Record

	done    chan struct{}
	summary transcript.Summary
	err     error
}

// ID returns the session identifier.
func (r *Run) ID() string { return r.Record.ID() }

// Done is closed when the session has finished.
func (r *Run) Done() <-chan struct{} { return r.done }

// Result blocks until the session finishes and returns its summary.
func (r *Run) Result() (transcript.Summary, error) {
	<-r.done
	return r.summary, r.err
}

// RunSession drives a full session synchronously and returns the final
// summary. With an empty slate it fails before the first turn.
func (s *Service) RunSession(ctx context.Context, items []articles.Item) (transcript.Summary, error) {
	run, err := s.StartSession(ctx, items)
	if err != nil {
		return transcript.Summary{}, err
	}
	return run.Result()
}

// StartSession validates the slate, opens the record, and drives the
// session on its own goroutine. Callers watch progress through the
// returned Run.
func (s *Service) StartSession(ctx context.Context, items []articles.Item) (*Run, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	rec := transcript.NewRecord(uuid.NewString(), s.registry.Names(), items)
	run := &Run{Record: rec, done: make(chan struct{})}

	s.metrics.ActiveSessions.Inc()
	go func() {
		defer close(run.done)
		defer s.metrics.ActiveSessions.Dec()
		run.summary, run.err = s.drive(ctx, rec)
	}()
	return run, nil
}

func (s *Service) drive(ctx context.Context, rec *transcript.Record) (transcript.Summary, error) {
	items := rec.Items()
	log.Printf("newsroom: session %s starting with %d items", rec.ID(), len(items))

	// The collector opens the meeting with the slate; no model call is
	// spent on it.
	collector, _ := s.registry.ByRole(persona.RoleCollector)
	if _, err := rec.Append(collector.Name, string(collector.Role), seedText(collector, items), false); err != nil {
		return transcript.Summary{}, err
	}
	s.metrics.Turns.WithLabelValues(collector.Name).Inc()

	for {
		// Cancellation is honored at turn boundaries only; a turn that
		// already started is left to finish.
		if ctx.Err() != nil {
			log.Printf("newsroom: session %s cancelled after %d turns", rec.ID(), rec.Len())
			break
		}

		speaker, ok := s.policy.NextSpeaker(rec.Turns(), rec.HasDecision())
		if !ok {
			break
		}
		// The policy already bounds the session; this guard only
		// matters if a registry edit breaks its invariants.
		if rec.Len() >= s.policy.HardCap()+2 {
			log.Printf("newsroom: session %s hit the emergency turn bound", rec.ID())
			break
		}

		text, synthetic := s.speak(ctx, speaker, rec)
		if _, err := rec.Append(speaker.Name, string(speaker.Role), text, synthetic); err != nil {
			return transcript.Summary{}, err
		}
		s.metrics.Turns.WithLabelValues(speaker.Name).Inc()

		if !rec.HasDecision() {
			if decision, found := s.detector.Detect(rec.Turns(), items); found {
				if err := rec.AppendDecision(decision); err != nil {
					return transcript.Summary{}, err
				}
				s.metrics.ObserveDecisionLatency(time.Since(rec.StartedAt()))
				log.Printf("newsroom: session %s decision by %s at turn %d", rec.ID(), decision.DecisionMaker, decision.TurnSeq)
			}
		}
	}

	forced := false
	if !rec.HasDecision() {
		dm, _ := s.registry.ByRole(persona.RoleDecisionMaker)
		decision, err := forceResolution(rec, dm)
		if err != nil {
			return transcript.Summary{}, fmt.Errorf("newsroom: session %s: %w", rec.ID(), err)
		}
		forced = true
		s.metrics.Turns.WithLabelValues(dm.Name).Inc()
		s.metrics.ForcedResolutions.Inc()
		s.metrics.ObserveDecisionLatency(time.Since(rec.StartedAt()))
		log.Printf("newsroom: session %s forced resolution on %v", rec.ID(), decision.ItemIDs)
	}

	summary, err := rec.Finalize()
	if err != nil {
		return transcript.Summary{}, err
	}
	outcome := "organic"
	if forced {
		outcome = "forced"
	}
	s.metrics.SessionOutcomes.WithLabelValues(outcome).Inc()

	s.afterSession(summary)
	log.Printf("newsroom: session %s finished, %d turns, outcome %s", rec.ID(), len(summary.Turns), outcome)
	return summary, nil
}

// speak asks the adapter for the speaker's turn, retrying once before
// degrading to a synthetic placeholder so the meeting can go on.
func (s *Service) speak(ctx context.Context, speaker persona.Participant, rec *transcript.Record) (text string, synthetic bool) {
	req := brain.Request{
		SessionID: rec.ID(),
		Speaker:   speaker,
		History:   historyFor(rec),
	}
	for attempt := 0; attempt <= 1; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.turnTimeout)
		resp, err := s.adapter.Generate(callCtx, req)
		cancel()
		if err == nil {
			if attempt > 0 {
				s.metrics.ModelCallErrors.WithLabelValues(speaker.Name, "recovered").Inc()
			}
			return resp.Text, false
		}
		if ctx.Err() != nil || !reliability.IsRetryable(err) {
			log.Printf("newsroom: session %s turn by %s failed permanently: %v", rec.ID(), speaker.Name, err)
			break
		}
		log.Printf("newsroom: session %s turn by %s failed (attempt %d): %v", rec.ID(), speaker.Name, attempt+1, err)
		if attempt == 0 {
			backoff := reliability.ExponentialBackoff(attempt, s.retryBase, retryCap)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
			}
		}
	}
	s.metrics.ModelCallErrors.WithLabelValues(speaker.Name, "degraded").Inc()
	return fmt.Sprintf("[%s is unavailable this round]", speaker.Name), true
}

func (s *Service) afterSession(summary transcript.Summary) {
	// Archival and publication are best effort: the summary is already
	// final and is returned to the caller either way.
	bg, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if s.archive != nil {
		if err := s.archive.SaveSession(bg, summary); err != nil {
			log.Printf("newsroom: session %s archive failed: %v", summary.SessionID, err)
		}
	}
	if s.sink != nil && len(summary.SelectedItems) > 0 {
		if err := s.sink.Publish(bg, summary.SelectedItems, summary); err != nil {
			log.Printf("newsroom: session %s publication failed: %v", summary.SessionID, err)
		}
	}
}

func seedText(collector persona.Participant, items []articles.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Morning team, %s here. %d stories on the slate today:\n", collector.Name, len(items))
	for i, it := range items {
		summary := it.Summary
		if len(summary) > 150 {
			summary = summary[:150] + "..."
		}
		fmt.Fprintf(&b, "%d. %s (%s) - crypto relevance %.0f%%", i+1, it.Title, it.Source, it.Relevance*100)
		if summary != "" {
			fmt.Fprintf(&b, "\n   %s", summary)
		}
		b.WriteString("\n")
	}
	b.WriteString("Who wants to weigh in first?")
	return b.String()
}

func historyFor(rec *transcript.Record) []brain.Message {
	turns := rec.Turns()
	out := make([]brain.Message, len(turns))
	for i, t := range turns {
		out[i] = brain.Message{Speaker: t.Speaker, Role: t.Role, Text: t.Text}
	}
	return out
}
