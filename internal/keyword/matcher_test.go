package keyword

import (
	"testing"
)

func TestMatchLiteralWordBoundaries(t *testing.T) {
	t.Parallel()

	m, err := Compile([]Rule{
		{Label: "Meta", Pattern: "Meta", CaseSensitive: true},
	})
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	if got := m.Match("Meta released a new model"); len(got) != 1 || got[0] != "Meta" {
		t.Fatalf("expected [Meta], got %v", got)
	}
	if got := m.Match("a meta-learning approach"); len(got) != 0 {
		t.Fatalf("expected no match for meta-learning, got %v", got)
	}
	if got := m.Match("Metamorphosis"); len(got) != 0 {
		t.Fatalf("expected no match inside a larger word, got %v", got)
	}
}

func TestMatchCaseFolding(t *testing.T) {
	t.Parallel()

	m, err := Compile([]Rule{
		{Label: "OpenAI", Pattern: "OpenAI"},
	})
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	if got := m.Match("openai published results"); len(got) != 1 {
		t.Fatalf("default mode should fold case, got %v", got)
	}
}

func TestMatchRawRegex(t *testing.T) {
	t.Parallel()

	m, err := Compile([]Rule{
		{Label: "Google", Pattern: `\bGoog[le]{2}\b`, RawRegex: true},
	})
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	if got := m.Match("Google announced"); len(got) != 1 {
		t.Fatalf("raw regex should match Google, got %v", got)
	}
	if got := m.Match("a googly eye"); len(got) != 0 {
		t.Fatalf("raw regex should not match googly, got %v", got)
	}
}

func TestCompileRejectsInvalidRawRegex(t *testing.T) {
	t.Parallel()

	_, err := Compile([]Rule{
		{Label: "bad", Pattern: `\b(unclosed`, RawRegex: true},
	})
	if err == nil {
		t.Fatal("expected compile error for malformed raw_regex")
	}
}

func TestCompileRejectsMissingFields(t *testing.T) {
	t.Parallel()

	if _, err := Compile([]Rule{{Pattern: "x"}}); err == nil {
		t.Fatal("expected error for entry without label")
	}
	if _, err := Compile([]Rule{{Label: "x"}}); err == nil {
		t.Fatal("expected error for entry without pattern")
	}
}

func TestMatchSharedLabelAndOrder(t *testing.T) {
	t.Parallel()

	m, err := Compile([]Rule{
		{Label: "FAIR", Pattern: "FAIR", CaseSensitive: true},
		{Label: "FAIR", Pattern: "Facebook AI Research"},
		{Label: "DeepMind", Pattern: "DeepMind"},
	})
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	got := m.Match("DeepMind and Facebook AI Research collaborated with FAIR")
	if len(got) != 2 {
		t.Fatalf("expected 2 labels, got %v", got)
	}
	if got[0] != "FAIR" || got[1] != "DeepMind" {
		t.Fatalf("expected configuration order without duplicates, got %v", got)
	}
}

func TestMatchScansAllTextFields(t *testing.T) {
	t.Parallel()

	m, err := Compile([]Rule{{Label: "Anthropic", Pattern: "Anthropic"}})
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	got := m.Match("Unrelated title", "plain abstract", "Jane Doe, Anthropic Team")
	if len(got) != 1 {
		t.Fatalf("expected author field to match, got %v", got)
	}
}

func TestDisplayResolution(t *testing.T) {
	t.Parallel()

	m, err := Compile([]Rule{
		{Label: "GDM", Pattern: "DeepMind", DisplayAs: "Google DeepMind"},
		{Label: "OpenAI", Pattern: "OpenAI"},
	})
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}

	// Match reports the canonical label; display names apply only at
	// rendering time.
	if got := m.Match("DeepMind paper"); len(got) != 1 || got[0] != "GDM" {
		t.Fatalf("expected canonical label GDM, got %v", got)
	}
	if got := m.Display("GDM"); got != "Google DeepMind" {
		t.Fatalf("unexpected display name: %s", got)
	}
	if got := m.Display("OpenAI"); got != "OpenAI" {
		t.Fatalf("label without override should display as itself, got %s", got)
	}
}
