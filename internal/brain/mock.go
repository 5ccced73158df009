package brain

import (
	"context"
	"fmt"
	"sync"

	"github.com/techronicle/newsroom/internal/persona"
)

// MockAdapter generates deterministic in-character turns without any
// upstream dependency. Sessions driven by it still reach an organic
// decision because the decision maker's line carries an explicit
// approval.
type MockAdapter struct{}

func NewMockAdapter() *MockAdapter { return &MockAdapter{} }

func (a *MockAdapter) Generate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	var text string
	switch req.Speaker.Role {
	case persona.RoleCollector:
		text = "I've got the slate in front of me. The lead story has the strongest sourcing; the rest are solid follows."
	case persona.RoleAnalyst:
		text = "The on-chain data supports the lead story. Market significance is clearly highest there; the others are noise by comparison."
	case persona.RoleVerifier:
		text = "Sourcing checks out on the lead item. Two independent confirmations; the headline matches the body."
	case persona.RoleAudienceVoice:
		text = "Readers are already all over this topic. The lead story will travel; the angle writes its own social copy."
	case persona.RoleDecisionMaker:
		text = "I've heard enough. Final decision: the lead story is approved for publication."
	case persona.RolePublisher:
		text = "Confirmed. Formatting now, pushing to the channel within the hour."
	default:
		text = fmt.Sprintf("%s nods along.", req.Speaker.Name)
	}
	return Response{Text: text}, nil
}

// ScriptedAdapter replays a fixed sequence of responses and errors, one
// per Generate call. Tests use it to force specific failure and
// decision shapes.
type ScriptedAdapter struct {
	mu    sync.Mutex
	steps []ScriptStep
	calls int
}

// ScriptStep is one scripted Generate outcome.
type ScriptStep struct {
	Text string
	Err  error
}

func NewScriptedAdapter(steps ...ScriptStep) *ScriptedAdapter {
	return &ScriptedAdapter{steps: steps}
}

// Calls reports how many times Generate has been invoked.
func (a *ScriptedAdapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *ScriptedAdapter) Generate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if len(a.steps) == 0 {
		return Response{Text: fmt.Sprintf("%s has nothing to add.", req.Speaker.Name)}, nil
	}
	step := a.steps[0]
	a.steps = a.steps[1:]
	if step.Err != nil {
		return Response{}, step.Err
	}
	return Response{Text: step.Text}, nil
}
