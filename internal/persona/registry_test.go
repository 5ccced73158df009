package persona

import (
	"errors"
	"testing"
)

func TestDefaultNewsroomRoster(t *testing.T) {
	reg := DefaultNewsroom()
	if reg.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", reg.Len())
	}

	wantOrder := []string{"Gary", "Aravind", "Tijana", "Aayushi", "Jerin", "James"}
	got := reg.Names()
	for i, name := range wantOrder {
		if got[i] != name {
			t.Fatalf("Names()[%d] = %q, want %q", i, got[i], name)
		}
	}

	roles := []Role{RoleCollector, RoleAnalyst, RoleVerifier, RoleAudienceVoice, RoleDecisionMaker, RolePublisher}
	for _, role := range roles {
		if _, ok := reg.ByRole(role); !ok {
			t.Fatalf("ByRole(%q) missing", role)
		}
	}
}

func TestGetCaseInsensitive(t *testing.T) {
	reg := DefaultNewsroom()
	p, err := reg.Get("jerin")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Role != RoleDecisionMaker {
		t.Fatalf("Get(jerin).Role = %q, want %q", p.Role, RoleDecisionMaker)
	}
}

func TestGetUnknown(t *testing.T) {
	reg := DefaultNewsroom()
	if _, err := reg.Get("Satoshi"); !errors.Is(err, ErrUnknownPersona) {
		t.Fatalf("Get(Satoshi) error = %v, want ErrUnknownPersona", err)
	}
}

func TestAfterSkipsSpeaker(t *testing.T) {
	reg := DefaultNewsroom()
	next := reg.After("James")
	if next.Name != "Gary" {
		t.Fatalf("After(James) = %q, want Gary (wraps around)", next.Name)
	}
	if reg.After("Gary").Name != "Aravind" {
		t.Fatalf("After(Gary) = %q, want Aravind", reg.After("Gary").Name)
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(
		Participant{Name: "A", Role: RoleCollector},
		Participant{Name: "A", Role: RoleAnalyst},
	)
	if err == nil {
		t.Fatal("NewRegistry() with duplicate names should fail")
	}
}
