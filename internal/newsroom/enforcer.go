package newsroom

import (
	"errors"
	"fmt"

	"github.com/techronicle/newsroom/internal/persona"
	"github.com/techronicle/newsroom/internal/transcript"
)

// ErrNoItems is returned when a session is started with nothing to
// discuss. A meeting with an empty slate cannot satisfy the publication
// requirement.
var ErrNoItems = errors.New("newsroom: no items to discuss")

// forceResolution appends an editorial override when the meeting ended
// without a decision: the decision maker approves the highest-relevance
// item on the slate, ties going to the item offered first.
func forceResolution(rec *transcript.Record, decisionMaker persona.Participant) (transcript.Decision, error) {
	items := rec.Items()
	selected, ok := pickHighestRelevance(items)
	if !ok {
		return transcript.Decision{}, ErrNoItems
	}

	text := fmt.Sprintf(
		"**EDITORIAL OVERRIDE - %s, %s**\n\n"+
			"Team, I'm making an executive decision to ensure publication:\n\n"+
			"**APPROVED FOR PUBLICATION: %q**\n\n"+
			"This article meets our standards and serves our readers. "+
			"Meeting concluded - publication decision final.",
		decisionMaker.Name, decisionMaker.Title, selected.Title,
	)
	turn, err := rec.Append(decisionMaker.Name, string(decisionMaker.Role), text, true)
	if err != nil {
		return transcript.Decision{}, err
	}
	decision := transcript.Decision{
		TurnSeq:       turn.Seq,
		DecisionMaker: decisionMaker.Name,
		ItemIDs:       []string{selected.ID},
		Forced:        true,
	}
	if err := rec.AppendDecision(decision); err != nil {
		return transcript.Decision{}, err
	}
	return decision, nil
}
