package inventory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AlphaCLabs/LeadPipe/internal/catalog"
	"github.com/AlphaCLabs/LeadPipe/internal/models"
)

func testService() *Service {
	return NewService(catalog.Default(), nil)
}

func TestFindMatchesFiltersByType(t *testing.T) {
	svc := testService()
	matches := svc.FindMatches("forklift", nil)
	if len(matches) != 2 {
		t.Fatalf("expected 2 forklifts, got %d", len(matches))
	}
	for _, m := range matches {
		if m.Type != "forklift" {
			t.Errorf("unexpected type %q", m.Type)
		}
	}
}

func TestFindMatchesUnknownType(t *testing.T) {
	svc := testService()
	if got := svc.FindMatches("excavator", nil); got != nil {
		t.Errorf("unknown type should match nothing, got %v", got)
	}
	if got := svc.FindMatches("", nil); got != nil {
		t.Errorf("empty type should match nothing, got %v", got)
	}
}

func TestFindMatchesGteOperator(t *testing.T) {
	svc := testService()
	matches := svc.FindMatches("forklift", map[string]string{"load_capacity_kg": "2800"})
	if len(matches) != 1 || matches[0].Model != "LGMG CPD30" {
		t.Fatalf("expected only the 3000 kg forklift, got %v", matches)
	}
}

func TestFindMatchesRangeUsesUpperBound(t *testing.T) {
	svc := testService()
	matches := svc.FindMatches("welder", map[string]string{"amperage": "450"})
	if len(matches) != 1 || matches[0].Model != "Shindaiwa DGW500DM" {
		t.Fatalf("expected only the 30-500 amp welder, got %v", matches)
	}
}

func TestFindMatchesEqAndContains(t *testing.T) {
	svc := testService()
	matches := svc.FindMatches("platform", map[string]string{
		"platform_kind": "scissor",
		"power_source":  "Electric",
	})
	if len(matches) != 6 {
		t.Fatalf("expected 6 electric scissor platforms, got %d", len(matches))
	}
}

func TestFindMatchesSentinelIsNotAConstraint(t *testing.T) {
	svc := testService()
	all := svc.FindMatches("welder", nil)
	got := svc.FindMatches("welder", map[string]string{"amperage": models.AnswerNotSpecified})
	if len(got) != len(all) {
		t.Errorf("sentinel value should not constrain matching, got %d of %d", len(got), len(all))
	}
}

func TestDescribeListsMatches(t *testing.T) {
	svc := testService()
	note, err := svc.Describe(context.Background(), "telehandler", map[string]string{"capacity_kg": "3600"})
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if !strings.Contains(note, "LGMG H1840") {
		t.Errorf("expected the 4000 kg handler in the note, got %q", note)
	}
	if strings.Contains(note, "LGMG H625") {
		t.Errorf("undersized handler should not be listed, got %q", note)
	}
}

func TestDescribeNoMatches(t *testing.T) {
	svc := testService()
	note, err := svc.Describe(context.Background(), "forklift", map[string]string{"load_capacity_kg": "9000"})
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if !strings.Contains(note, "do not currently have") {
		t.Errorf("expected an out-of-stock note, got %q", note)
	}
}

func TestDescribeEmptyProductType(t *testing.T) {
	svc := testService()
	note, err := svc.Describe(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if note != "" {
		t.Errorf("expected empty note without a product type, got %q", note)
	}
}

type stubClassifier struct {
	result bool
	err    error
}

func (s *stubClassifier) IsInventoryQuestion(context.Context, string) (bool, error) {
	return s.result, s.err
}

func TestAdvisorDelegates(t *testing.T) {
	adv := NewAdvisor(&stubClassifier{result: true}, testService())
	ok, err := adv.IsInventoryQuestion(context.Background(), "got any welders?")
	if err != nil || !ok {
		t.Errorf("expected classifier result, got %v %v", ok, err)
	}
	note, err := adv.Describe(context.Background(), "rammer", nil)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if !strings.Contains(note, "Sakai RS75") {
		t.Errorf("expected rammer stock, got %q", note)
	}
}

func TestAdvisorNilClassifier(t *testing.T) {
	adv := NewAdvisor(nil, testService())
	ok, err := adv.IsInventoryQuestion(context.Background(), "anything")
	if err != nil || ok {
		t.Errorf("nil classifier should never flag a message, got %v %v", ok, err)
	}
}

func TestAdvisorClassifierError(t *testing.T) {
	adv := NewAdvisor(&stubClassifier{err: errors.New("timeout")}, testService())
	if _, err := adv.IsInventoryQuestion(context.Background(), "anything"); err == nil {
		t.Error("expected classifier error to surface")
	}
}

func TestNumbers(t *testing.T) {
	cases := []struct {
		in   string
		want []float64
	}{
		{"30-500 AMP", []float64{30, 500}},
		{"501.47 CFM", []float64{501.47}},
		{"no digits", nil},
	}
	for _, tc := range cases {
		got := numbers(tc.in)
		if len(got) != len(tc.want) {
			t.Errorf("numbers(%q) = %v, want %v", tc.in, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("numbers(%q)[%d] = %v, want %v", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}
