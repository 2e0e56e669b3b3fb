package course

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validJSON = `{
  "title": "Go Basics",
  "modules": [
    {
      "title": "Module 1",
      "sections": [
        {
          "title": "Section 1",
          "scos": [
            {
              "title": "Unit 1",
              "screens": [
                {"title": "Theory", "blocks": [{"type": "text", "body": "Hello."}]}
              ],
              "knowledge_check": [
                {"type": "truefalse", "body": "Statement", "correct_answer": true}
              ]
            }
          ]
        }
      ]
    }
  ],
  "final_test": []
}`

const validYAML = `title: Go Basics
settings:
  passing_score: 90
modules:
  - title: Module 1
    sections:
      - title: Section 1
        scos:
          - title: Unit 1
            screens:
              - title: Theory
                blocks:
                  - type: text
                    body: Hello.
            knowledge_check:
              - type: fillin
                body: ___ says hello
                correct_answer: gopher
final_test: []
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	doc, err := Load(writeFile(t, "course.json", validJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Title != "Go Basics" || doc.UnitCount() != 1 {
		t.Errorf("doc = %+v", doc)
	}
	kc := doc.Modules[0].Sections[0].SCOs[0].KnowledgeCheck
	if len(kc) != 1 || kc[0].AnswerBool == nil || !*kc[0].AnswerBool {
		t.Errorf("knowledge check = %+v", kc)
	}
}

func TestLoadYAML(t *testing.T) {
	doc, err := Load(writeFile(t, "course.yaml", validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Settings.PassingScore != 90 {
		t.Errorf("PassingScore = %d, want 90", doc.Settings.PassingScore)
	}
	kc := doc.Modules[0].Sections[0].SCOs[0].KnowledgeCheck
	if len(kc) != 1 || kc[0].AnswerText != "gopher" {
		t.Errorf("knowledge check = %+v", kc)
	}
}

func TestLoadLegacyPagesNormalized(t *testing.T) {
	legacy := `{
  "title": "Old Course",
  "pages": [
    {
      "title": "Page",
      "blocks": [
        {"type": "text", "body": "Theory."},
        {"type": "mcq", "body": "Pick", "options": [{"text": "a", "correct": true}, {"text": "b"}]}
      ]
    }
  ]
}`
	doc, err := Load(writeFile(t, "legacy.json", legacy))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Pages) != 0 {
		t.Errorf("Pages survived normalization: %v", doc.Pages)
	}
	if doc.UnitCount() != 1 {
		t.Errorf("UnitCount = %d, want 1", doc.UnitCount())
	}
}

func TestLoadDefectiveDocumentFails(t *testing.T) {
	defective := `{"title": "Broken", "modules": [{"title": "M", "sections": [{"title": "S", "scos": [{"title": "U", "knowledge_check": [{"type": "mcq"}]}]}]}]}`
	_, err := Load(writeFile(t, "bad.json", defective))
	if err == nil {
		t.Fatal("Load succeeded on a defective document")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if len(verr.Defects) == 0 {
		t.Error("ValidationError carries no defects")
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	_, err := Load(writeFile(t, "garbage.json", "{not json"))
	if err == nil {
		t.Fatal("Load succeeded on malformed JSON")
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Error("malformed JSON misclassified as validation failure")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("Load succeeded on a missing file")
	}
}
