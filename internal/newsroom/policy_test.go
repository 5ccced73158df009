package newsroom

import (
	"testing"

	"github.com/techronicle/newsroom/internal/persona"
	"github.com/techronicle/newsroom/internal/transcript"
)

func turnsFor(reg *persona.Registry, names ...string) []transcript.Turn {
	out := make([]transcript.Turn, len(names))
	for i, n := range names {
		p, err := reg.Get(n)
		if err != nil {
			panic(err)
		}
		out[i] = transcript.Turn{Seq: i + 1, Speaker: p.Name, Role: string(p.Role)}
	}
	return out
}

func TestNextSpeakerOpensWithCollector(t *testing.T) {
	reg := persona.DefaultNewsroom()
	p := NewPolicy(reg, 0, 0)
	sp, ok := p.NextSpeaker(nil, false)
	if !ok || sp.Role != persona.RoleCollector {
		t.Fatalf("NextSpeaker(empty) = %q, %v, want collector", sp.Name, ok)
	}
}

func TestNextSpeakerRoleProgression(t *testing.T) {
	reg := persona.DefaultNewsroom()
	p := NewPolicy(reg, 0, 0)

	cases := []struct {
		history []string
		want    persona.Role
	}{
		{[]string{"Gary"}, persona.RoleAnalyst},
		{[]string{"Gary", "Aravind"}, persona.RoleVerifier},
		{[]string{"Gary", "Aravind", "Tijana"}, persona.RoleAudienceVoice},
		{[]string{"Gary", "Aravind", "Tijana", "Aayushi"}, persona.RoleDecisionMaker},
		// No decision yet: the desk gets another audience pass.
		{[]string{"Gary", "Aravind", "Tijana", "Aayushi", "Jerin"}, persona.RoleAudienceVoice},
	}
	for _, tc := range cases {
		sp, ok := p.NextSpeaker(turnsFor(reg, tc.history...), false)
		if !ok || sp.Role != tc.want {
			t.Fatalf("after %v: NextSpeaker = %q (%s), %v, want role %q", tc.history, sp.Name, sp.Role, ok, tc.want)
		}
	}
}

func TestNextSpeakerDeterministic(t *testing.T) {
	reg := persona.DefaultNewsroom()
	p := NewPolicy(reg, 0, 0)
	history := turnsFor(reg, "Gary", "Aravind", "Tijana")
	first, _ := p.NextSpeaker(history, false)
	for i := 0; i < 10; i++ {
		again, _ := p.NextSpeaker(history, false)
		if again.Name != first.Name {
			t.Fatalf("NextSpeaker not deterministic: %q then %q", first.Name, again.Name)
		}
	}
}

func TestAntiLoopForcesSpeakerChange(t *testing.T) {
	reg := persona.DefaultNewsroom()
	p := NewPolicy(reg, 0, 0)
	// One speaker has held the floor for the whole window.
	history := turnsFor(reg, "Gary", "Aravind", "Aravind", "Aravind")
	sp, ok := p.NextSpeaker(history, false)
	if !ok {
		t.Fatal("NextSpeaker returned no speaker")
	}
	if sp.Name == "Aravind" {
		t.Fatal("anti-loop did not force a different speaker")
	}
	if sp.Name != "Tijana" {
		t.Fatalf("anti-loop picked %q, want the next participant Tijana", sp.Name)
	}
}

func TestDecisionHandsFloorToPublisherThenEnds(t *testing.T) {
	reg := persona.DefaultNewsroom()
	p := NewPolicy(reg, 0, 0)

	history := turnsFor(reg, "Gary", "Aravind", "Tijana", "Aayushi", "Jerin")
	sp, ok := p.NextSpeaker(history, true)
	if !ok || sp.Role != persona.RolePublisher {
		t.Fatalf("after decision: NextSpeaker = %q, %v, want publisher", sp.Name, ok)
	}

	history = append(history, turnsFor(reg, "James")...)
	if _, ok := p.NextSpeaker(history, true); ok {
		t.Fatal("session should end after the publisher's closing turn")
	}
}

func TestSoftCapSteersToDecisionMaker(t *testing.T) {
	reg := persona.DefaultNewsroom()
	p := NewPolicy(reg, 4, 20)
	// The last speaker is a mid-review role so the table alone would
	// not hand the floor to the decision maker.
	history := turnsFor(reg, "Gary", "Aravind", "Tijana", "Aravind")
	sp, ok := p.NextSpeaker(history, false)
	if !ok || sp.Role != persona.RoleDecisionMaker {
		t.Fatalf("soft cap: NextSpeaker = %q (%s), want decision maker", sp.Name, sp.Role)
	}
}

func TestHardCapWindDown(t *testing.T) {
	reg := persona.DefaultNewsroom()
	p := NewPolicy(reg, 2, 6)

	// At hardCap-2 turns the floor goes to the decision maker.
	history := turnsFor(reg, "Gary", "Aravind", "Tijana", "Aayushi")
	sp, ok := p.NextSpeaker(history, false)
	if !ok || sp.Role != persona.RoleDecisionMaker {
		t.Fatalf("wind-down step 1 = %q (%s), want decision maker", sp.Name, sp.Role)
	}

	history = append(history, turnsFor(reg, "Jerin")...)
	sp, ok = p.NextSpeaker(history, false)
	if !ok || sp.Role != persona.RolePublisher {
		t.Fatalf("wind-down step 2 = %q (%s), want publisher", sp.Name, sp.Role)
	}

	history = append(history, turnsFor(reg, "James")...)
	if _, ok := p.NextSpeaker(history, false); ok {
		t.Fatal("session should end at the hard cap")
	}
}
