package newsroom

import (
	"strings"

	"github.com/techronicle/newsroom/internal/articles"
	"github.com/techronicle/newsroom/internal/persona"
	"github.com/techronicle/newsroom/internal/transcript"
)

// decisionWindow is how many of the most recent turns the detector
// inspects for a decision phrase.
const decisionWindow = 5

// DefaultLexicon returns the phrases that signal a publication
// decision when spoken by the decision maker.
func DefaultLexicon() []string {
	return []string{
		"approve",
		"approved for publication",
		"final decision",
		"green light",
		"publish this",
		"publish it",
		"executive decision",
		"i'm making the call",
		"we publish",
	}
}

// Detector spots publication decisions in the conversation using a
// phrase lexicon. Only turns spoken by a decision-maker role count.
type Detector struct {
	lexicon []string
}

// NewDetector builds a detector. An empty lexicon falls back to the
// default phrase set.
func NewDetector(lexicon []string) *Detector {
	if len(lexicon) == 0 {
		lexicon = DefaultLexicon()
	}
	lower := make([]string, len(lexicon))
	for i, p := range lexicon {
		lower[i] = strings.ToLower(p)
	}
	return &Detector{lexicon: lower}
}

// Detect scans the last few turns for a decision. When it finds one it
// also resolves which items were approved: items whose title fragment
// appears in the decision text, or the highest-relevance item on the
// slate when the text names none.
func (d *Detector) Detect(turns []transcript.Turn, items []articles.Item) (transcript.Decision, bool) {
	start := len(turns) - decisionWindow
	if start < 0 {
		start = 0
	}
	for i := len(turns) - 1; i >= start; i-- {
		t := turns[i]
		if persona.Role(t.Role) != persona.RoleDecisionMaker {
			continue
		}
		text := strings.ToLower(t.Text)
		if !d.matchesLexicon(text) {
			continue
		}
		return transcript.Decision{
			TurnSeq:       t.Seq,
			DecisionMaker: t.Speaker,
			ItemIDs:       resolveItems(text, items),
		}, true
	}
	return transcript.Decision{}, false
}

func (d *Detector) matchesLexicon(lowerText string) bool {
	for _, phrase := range d.lexicon {
		if strings.Contains(lowerText, phrase) {
			return true
		}
	}
	return false
}

func resolveItems(lowerText string, items []articles.Item) []string {
	var ids []string
	for _, it := range items {
		if fragmentMatches(lowerText, TitleFragment(it.Title)) {
			ids = append(ids, it.ID)
		}
	}
	if len(ids) > 0 {
		return ids
	}
	// The text names no item; a decision still needs a subject.
	if best, ok := pickHighestRelevance(items); ok {
		return []string{best.ID}
	}
	return nil
}

// fragmentMatches reports whether every word of the fragment appears in
// the decision text. The fragment skips short filler words, so a title
// quoted verbatim still matches even though its short words ("ETF",
// "hit") sit between the significant ones.
func fragmentMatches(lowerText, frag string) bool {
	if frag == "" {
		return false
	}
	for _, w := range strings.Fields(frag) {
		if !strings.Contains(lowerText, w) {
			return false
		}
	}
	return true
}

// TitleFragment lowers a title to the fragment used when matching it
// against decision text: its first four significant words.
func TitleFragment(title string) string {
	words := strings.Fields(strings.ToLower(title))
	var kept []string
	for _, w := range words {
		w = strings.Trim(w, `.,:;!?"'()`)
		if len(w) <= 3 {
			continue
		}
		kept = append(kept, w)
		if len(kept) == 4 {
			break
		}
	}
	if len(kept) == 0 {
		return strings.ToLower(strings.TrimSpace(title))
	}
	return strings.Join(kept, " ")
}

// pickHighestRelevance returns the most relevant item, resolving ties
// in favor of the item offered first.
func pickHighestRelevance(items []articles.Item) (articles.Item, bool) {
	if len(items) == 0 {
		return articles.Item{}, false
	}
	best := items[0]
	for _, it := range items[1:] {
		if it.Relevance > best.Relevance {
			best = it
		}
	}
	return best, true
}
