package scorm

import (
	"strings"
	"testing"

	"github.com/akozlov/scormgen/internal/course"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func renderDoc() *course.Document {
	yes := true
	return &course.Document{
		Title:    "Go Basics",
		Language: "en",
		Modules: []course.Module{{
			Title: "Module A",
			Sections: []course.Section{{
				Title: "Section A1",
				SCOs: []course.SCO{{
					Title: "Concurrency",
					Screens: []course.Screen{{
						Title: "Goroutines",
						Blocks: []course.Block{{
							Type: course.BlockText,
							Body: "# Lightweight threads\n\nGoroutines are **cheap**.",
						}},
					}},
					KnowledgeCheck: []course.Block{
						{
							Type: course.BlockMCQ,
							Body: "What starts a goroutine?",
							Options: []course.Option{
								{Text: "go keyword", Correct: true},
								{Text: "run keyword"},
								{Text: "spawn keyword"},
							},
							FeedbackCorrect: "Right.",
						},
						{Type: course.BlockTrueFalse, Body: "Channels block by default.", AnswerBool: &yes},
						{Type: course.BlockFillIn, Body: "___ closes a channel", AnswerText: "Close", Alternatives: []string{"close()"}},
						{Type: course.BlockMatching, Pairs: []course.Pair{
							{Left: "make", Right: "allocates"},
							{Left: "close", Right: "terminates"},
						}},
						{Type: course.BlockOrdering, Items: []string{"write", "compile", "run"}},
					},
				}},
			}},
		}},
		FinalTest: []course.Block{
			{Type: course.BlockTrueFalse, Body: "Go compiles fast.", AnswerBool: &yes},
		},
	}
}

func TestRenderSCO(t *testing.T) {
	r := newTestRenderer(t)
	doc := renderDoc()
	out, err := r.RenderSCO(doc, doc.Modules[0].Sections[0].SCOs[0])
	if err != nil {
		t.Fatalf("RenderSCO: %v", err)
	}
	page := string(out)

	for _, want := range []string{
		`<html lang="en">`,
		"<h1>Concurrency</h1>",
		"<h2>Goroutines</h2>",
		"<h1>Lightweight threads</h1>", // markdown heading
		"<strong>cheap</strong>",       // markdown emphasis
		"Knowledge Check",
		`type="radio" name="q0"`,
		"go keyword",
		`name="q2"`, // fillin input
		`<select name="q3_0">`,
		`<select name="q4_2">`,
		`<link rel="stylesheet" href="style.css">`,
		`<script src="scorm_api.js">`,
		"CoursePlayer.init(",
		`"passing_score":80`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("rendered page missing %s", want)
		}
	}
}

func TestRenderSCOAnswerKey(t *testing.T) {
	r := newTestRenderer(t)
	doc := renderDoc()
	out, err := r.RenderSCO(doc, doc.Modules[0].Sections[0].SCOs[0])
	if err != nil {
		t.Fatalf("RenderSCO: %v", err)
	}
	page := string(out)

	for _, want := range []string{
		`{"type":"mcq","answer":0,"feedback_correct":"Right."}`,
		`{"type":"truefalse","answer":true}`,
		`{"type":"fillin","answer":["close","close()"]}`,
		// Rights are shown sorted (allocates, terminates); make->allocates
		// is index 0, close->terminates is index 1.
		`{"type":"matching","answer":[0,1]}`,
		// Items shown sorted: compile(2nd), run(3rd), write(1st).
		`{"type":"ordering","answer":[2,3,1]}`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("answer key missing %s", want)
		}
	}
}

func TestRenderFinalTest(t *testing.T) {
	r := newTestRenderer(t)
	doc := renderDoc()
	doc.Language = "ru"
	out, err := r.RenderFinalTest(doc)
	if err != nil {
		t.Fatalf("RenderFinalTest: %v", err)
	}
	page := string(out)

	for _, want := range []string{
		`<html lang="ru">`,
		"<h1>Итоговый тест</h1>",
		"Верно",
		"Проверить",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("final test page missing %s", want)
		}
	}
	if strings.Contains(page, "Knowledge Check") {
		t.Error("final test page carries the lesson quiz heading")
	}
}

func TestRenderIndex(t *testing.T) {
	r := newTestRenderer(t)
	doc := renderDoc()
	doc.Description = "A course about Go."
	tree := CompileTree(doc)
	out, err := r.RenderIndex(doc, tree)
	if err != nil {
		t.Fatalf("RenderIndex: %v", err)
	}
	page := string(out)

	for _, want := range []string{
		"<h1>Go Basics</h1>",
		"A course about Go.",
		"<h2>Module A</h2>",
		`<a href="sco_1_1_1.html">Concurrency</a>`,
		`<a href="final_test.html">Final Test</a>`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("index page missing %s", want)
		}
	}
}

func TestRenderSCOWithoutQuestions(t *testing.T) {
	r := newTestRenderer(t)
	doc := renderDoc()
	sco := doc.Modules[0].Sections[0].SCOs[0]
	sco.KnowledgeCheck = nil
	out, err := r.RenderSCO(doc, sco)
	if err != nil {
		t.Fatalf("RenderSCO: %v", err)
	}
	page := string(out)
	if strings.Contains(page, "quiz-submit") {
		t.Error("quiz controls rendered without questions")
	}
	if !strings.Contains(page, `"questions":[]`) && !strings.Contains(page, `"questions":null`) {
		t.Error("player config missing empty question list")
	}
}

func TestRenderSCODuplicateAnswerValues(t *testing.T) {
	r := newTestRenderer(t)
	doc := renderDoc()
	sco := doc.Modules[0].Sections[0].SCOs[0]
	sco.KnowledgeCheck = []course.Block{
		{Type: course.BlockMatching, Pairs: []course.Pair{
			{Left: "go", Right: "keyword"},
			{Left: "defer", Right: "keyword"},
			{Left: "chan", Right: "type"},
		}},
		{Type: course.BlockOrdering, Items: []string{"beta", "alpha", "beta"}},
	}
	out, err := r.RenderSCO(doc, sco)
	if err != nil {
		t.Fatalf("RenderSCO: %v", err)
	}
	page := string(out)

	// Both keyword rows resolve to the single deduplicated display entry.
	if !strings.Contains(page, `{"type":"matching","answer":[0,0,1]}`) {
		t.Error("matching answer key does not collapse duplicate rights")
	}
	// The repeated item gets distinct positions: display order is
	// alpha(2nd), beta(1st), beta(3rd).
	if !strings.Contains(page, `{"type":"ordering","answer":[2,1,3]}`) {
		t.Error("ordering answer key does not separate repeated items")
	}
	// One select per matching row, each listing the value once.
	if got := strings.Count(page, ">keyword</option>"); got != 3 {
		t.Errorf("keyword option count = %d, want one per row", got)
	}
}
