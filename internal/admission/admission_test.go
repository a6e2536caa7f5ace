package admission

import (
	"testing"

	"github.com/ziadkadry99/hrdesk/internal/config"
)

func TestIsInDomain(t *testing.T) {
	f := New(config.DefaultKeywords)

	tests := []struct {
		question string
		want     bool
	}{
		{"Quelle est la politique de télétravail ?", true},
		{"Quel temps fera-t-il demain ? (météo)", false},
		{"Combien de jours de CONGÉ ai-je ?", true},
		{"Comment poser des conges ?", true},
		{"Mon SALAIRE est-il versé le 25 ?", true},
		{"", false},
		{"Quelle est la capitale de la France ?", false},
	}
	for _, tt := range tests {
		if got := f.IsInDomain(tt.question); got != tt.want {
			t.Errorf("IsInDomain(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

// Substring matching is deliberately imprecise: "rh" also matches inside
// unrelated words.
func TestIsInDomainSubstring(t *testing.T) {
	f := New([]string{"rh"})
	if !f.IsInDomain("rhinocéros") {
		t.Error("expected substring match")
	}
}

func TestNewNormalizesKeywords(t *testing.T) {
	f := New([]string{"  Paie ", "", "   ", "CONGÉ"})
	got := f.Keywords()
	want := []string{"paie", "congé"}
	if len(got) != len(want) {
		t.Fatalf("Keywords() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keywords()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEmptyFilterRejectsEverything(t *testing.T) {
	f := New(nil)
	if f.IsInDomain("télétravail") {
		t.Error("filter without keywords must reject")
	}
}

func TestMatchReportsKeyword(t *testing.T) {
	f := New([]string{"salaire", "contrat"})
	kw, ok := f.Match("Mon contrat de travail")
	if !ok || kw != "contrat" {
		t.Errorf("Match = %q, %v", kw, ok)
	}
}
