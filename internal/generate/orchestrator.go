// Package generate turns a topic into a complete course document by
// sequencing three generation stages against the LLM client: outline,
// per-unit content, and the final assessment.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/akozlov/scormgen/internal/course"
	"github.com/akozlov/scormgen/internal/llm"
)

// TextGenerator is the slice of the LLM client the orchestrator needs.
type TextGenerator interface {
	Generate(ctx context.Context, req llm.Request) (json.RawMessage, error)
}

// Params configures one generation run.
type Params struct {
	Topic    string `json:"topic"`
	Language string `json:"language"`

	Modules            int `json:"modules"`
	SectionsPerModule  int `json:"sections_per_module"`
	UnitsPerSection    int `json:"units_per_section"`
	ScreensPerUnit     int `json:"screens_per_unit"`
	QuestionsPerUnit   int `json:"questions_per_unit"`
	FinalTestQuestions int `json:"final_test_questions"` // 0 skips the assessment stage

	DetailLevel string  `json:"detail_level"` // brief/normal/detailed/expert
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`

	SystemPrompt      string `json:"system_prompt,omitempty"`
	ExtraInstructions string `json:"extra_instructions,omitempty"`
	ReferenceText     string `json:"reference_text,omitempty"`

	// Settings overrides the fixed SCORM defaults when non-nil.
	Settings *course.Settings `json:"settings,omitempty"`
}

func (p *Params) applyDefaults() {
	if p.Language == "" {
		p.Language = "en"
	}
	if p.Modules <= 0 {
		p.Modules = 3
	}
	if p.SectionsPerModule <= 0 {
		p.SectionsPerModule = 2
	}
	if p.UnitsPerSection <= 0 {
		p.UnitsPerSection = 2
	}
	if p.ScreensPerUnit <= 0 {
		p.ScreensPerUnit = 2
	}
	if p.QuestionsPerUnit <= 0 {
		p.QuestionsPerUnit = 1
	}
	if p.DetailLevel == "" {
		p.DetailLevel = "normal"
	}
	if p.Temperature <= 0 {
		p.Temperature = 0.7
	}
	if p.Temperature > 1.5 {
		p.Temperature = 1.5
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = 4096
	}
	if p.SystemPrompt == "" {
		p.SystemPrompt = DefaultSystemPrompt
	}
}

// Progress bounds. The per-unit content stage interpolates linearly between
// the two unit bounds as units complete.
const (
	ProgressOutlineDone = 15
	ProgressUnitsStart  = 15
	ProgressUnitsEnd    = 70
	ProgressFinalDone   = 85
)

// ProgressFunc receives a percentage and the name of the running stage.
type ProgressFunc func(pct int, stage string)

// Orchestrator runs the three-stage pipeline. It owns the document for the
// duration of one run; callers must not start a second run for the same
// session while one is in flight.
type Orchestrator struct {
	gen      TextGenerator
	log      *slog.Logger
	progress ProgressFunc
}

func NewOrchestrator(gen TextGenerator, log *slog.Logger, progress ProgressFunc) *Orchestrator {
	return &Orchestrator{gen: gen, log: log, progress: progress}
}

func (o *Orchestrator) report(pct int, stage string) {
	if o.progress != nil {
		o.progress(pct, stage)
	}
}

// Run generates a complete course document from a topic. Structural defects
// in the generated document are logged as warnings, not errors: the content
// may still be usable or fixable downstream.
func (o *Orchestrator) Run(ctx context.Context, p Params) (*course.Document, error) {
	p.applyDefaults()

	doc, err := o.outlineStage(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("outline stage: %w", err)
	}
	o.report(ProgressOutlineDone, "outline")
	o.log.Info("outline generated", "title", doc.Title, "modules", len(doc.Modules), "units", doc.UnitCount())

	outline := outlineContext(doc)
	total := doc.UnitCount()
	done := 0
	for mi := range doc.Modules {
		for si := range doc.Modules[mi].Sections {
			for ui := range doc.Modules[mi].Sections[si].SCOs {
				sco := &doc.Modules[mi].Sections[si].SCOs[ui]
				if err := o.unitStage(ctx, p, outline, sco); err != nil {
					return nil, fmt.Errorf("content stage, unit %q: %w", sco.Title, err)
				}
				done++
				pct := ProgressUnitsStart + (ProgressUnitsEnd-ProgressUnitsStart)*done/total
				o.report(pct, "content")
			}
		}
	}

	if p.FinalTestQuestions > 0 {
		questions, err := o.finalTestStage(ctx, p, outline)
		if err != nil {
			return nil, fmt.Errorf("final assessment stage: %w", err)
		}
		doc.FinalTest = questions
		o.report(ProgressFinalDone, "final_test")
	}

	if defects := course.Validate(doc); len(defects) > 0 {
		o.log.Warn("generated course has structural defects", "count", len(defects), "defects", defects)
	}
	return doc, nil
}

// outlineStage produces the skeleton document: titles only, empty units,
// settings attached.
func (o *Orchestrator) outlineStage(ctx context.Context, p Params) (*course.Document, error) {
	raw, err := o.gen.Generate(ctx, llm.Request{
		System:      p.SystemPrompt,
		User:        outlinePrompt(p),
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	var doc course.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode outline: %w", err)
	}
	if doc.Title == "" {
		doc.Title = p.Topic
	}
	if doc.Language == "" {
		doc.Language = p.Language
	}
	if len(doc.Modules) == 0 {
		return nil, fmt.Errorf("outline contains no modules")
	}

	// Units start empty regardless of what the model volunteered.
	for mi := range doc.Modules {
		for si := range doc.Modules[mi].Sections {
			for ui := range doc.Modules[mi].Sections[si].SCOs {
				doc.Modules[mi].Sections[si].SCOs[ui].Screens = nil
				doc.Modules[mi].Sections[si].SCOs[ui].KnowledgeCheck = nil
			}
		}
	}

	if p.Settings != nil {
		doc.Settings = *p.Settings
	}
	doc.Settings = doc.Settings.WithDefaults()
	doc.FinalTest = []course.Block{}
	doc.Pages = nil
	return &doc, nil
}

type unitContent struct {
	Screens        []course.Screen `json:"screens"`
	KnowledgeCheck []course.Block  `json:"knowledge_check"`
}

// unitStage fills one unit with screens and knowledge-check questions.
func (o *Orchestrator) unitStage(ctx context.Context, p Params, outline string, sco *course.SCO) error {
	raw, err := o.gen.Generate(ctx, llm.Request{
		System:      p.SystemPrompt,
		User:        unitPrompt(p, outline, sco.Title),
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return err
	}

	var content unitContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return fmt.Errorf("decode unit content: %w", err)
	}
	if len(content.Screens) == 0 {
		return fmt.Errorf("unit content contains no screens")
	}
	sco.Screens = content.Screens
	sco.KnowledgeCheck = content.KnowledgeCheck
	return nil
}

type finalTestContent struct {
	Questions []course.Block `json:"questions"`
}

// finalTestStage produces the course-wide assessment questions.
func (o *Orchestrator) finalTestStage(ctx context.Context, p Params, outline string) ([]course.Block, error) {
	raw, err := o.gen.Generate(ctx, llm.Request{
		System:      p.SystemPrompt,
		User:        finalTestPrompt(p, outline),
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	var content finalTestContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("decode final test: %w", err)
	}
	if len(content.Questions) == 0 {
		return nil, fmt.Errorf("final test contains no questions")
	}
	return content.Questions, nil
}
