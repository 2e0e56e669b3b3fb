package generate

import (
	"strings"
	"testing"

	"github.com/akozlov/scormgen/internal/course"
)

func TestOutlinePromptCarriesCounts(t *testing.T) {
	p := Params{Topic: "Go Basics", Language: "en", Modules: 4, SectionsPerModule: 3, UnitsPerSection: 2}
	prompt := outlinePrompt(p)

	for _, want := range []string{
		`"Go Basics"`,
		"English",
		"exactly 4 modules",
		"3 sections",
		"2 learning units",
		`"scos"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("outline prompt missing %q", want)
		}
	}
}

func TestUnitPromptCarriesOutlineAndDetail(t *testing.T) {
	p := Params{Topic: "Go", Language: "ru", ScreensPerUnit: 2, QuestionsPerUnit: 3, DetailLevel: "expert"}
	prompt := unitPrompt(p, "1. Module A\n  1.1. Section", "Goroutines")

	for _, want := range []string{
		"Russian",
		"Module A",
		`"Goroutines"`,
		"2 theory screens",
		"3 knowledge-check questions",
		detailInstructions["expert"],
		`"knowledge_check"`,
		`"type": "mcq"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("unit prompt missing %q", want)
		}
	}
}

func TestUnitPromptUnknownDetailFallsBack(t *testing.T) {
	p := Params{Topic: "Go", DetailLevel: "verbose"}
	prompt := unitPrompt(p, "", "Unit")
	if !strings.Contains(prompt, detailInstructions["normal"]) {
		t.Error("unknown detail level did not fall back to normal")
	}
}

func TestFinalTestPromptCarriesCount(t *testing.T) {
	p := Params{Topic: "Go", FinalTestQuestions: 7}
	prompt := finalTestPrompt(p, "outline text")
	if !strings.Contains(prompt, "exactly 7 questions") {
		t.Error("final test prompt missing question count")
	}
	if !strings.Contains(prompt, "outline text") {
		t.Error("final test prompt missing outline")
	}
}

func TestReferenceAndExtraSections(t *testing.T) {
	p := Params{Topic: "Go", ReferenceText: "REFERENCE BODY", ExtraInstructions: "Use humor."}
	for name, prompt := range map[string]string{
		"outline": outlinePrompt(p),
		"unit":    unitPrompt(p, "", "U"),
	} {
		if !strings.Contains(prompt, "REFERENCE BODY") {
			t.Errorf("%s prompt missing reference text", name)
		}
		if !strings.Contains(prompt, "Use humor.") {
			t.Errorf("%s prompt missing extra instructions", name)
		}
	}
	if strings.Contains(outlinePrompt(Params{Topic: "Go"}), "reference material") {
		t.Error("reference section rendered without reference text")
	}
}

func TestLanguageLabel(t *testing.T) {
	tests := map[string]string{"ru": "Russian", "en": "English", "": "English", "de": "de"}
	for code, want := range tests {
		if got := languageLabel(code); got != want {
			t.Errorf("languageLabel(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestOutlineContext(t *testing.T) {
	doc := &course.Document{
		Title: "Go Basics",
		Modules: []course.Module{{
			Title: "Module A",
			Sections: []course.Section{{
				Title: "Section A1",
				SCOs:  []course.SCO{{Title: "Unit 1"}, {Title: "Unit 2"}},
			}},
		}},
	}
	got := outlineContext(doc)
	want := "Go Basics\n1. Module A\n  1.1. Section A1\n    - Unit 1\n    - Unit 2"
	if got != want {
		t.Errorf("outlineContext =\n%q\nwant\n%q", got, want)
	}
}
