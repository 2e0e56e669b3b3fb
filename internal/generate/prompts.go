package generate

import (
	"fmt"
	"strings"

	"github.com/akozlov/scormgen/internal/course"
)

// DefaultSystemPrompt is used when the caller does not override it.
const DefaultSystemPrompt = "You are a course generator. Respond with valid JSON only, with no commentary and no markdown fences."

// Detail levels map to prose-density instructions in the content prompts.
var detailInstructions = map[string]string{
	"brief":    "Each text block is 2-3 sentences covering only the essentials.",
	"normal":   "Each text block is 1-2 paragraphs of theory with examples.",
	"detailed": "Each text block is 2-3 paragraphs with thorough explanations, examples and definitions.",
	"expert":   "Each text block is 3-5 paragraphs with in-depth analysis, code samples and tables where appropriate.",
}

func detailInstruction(level string) string {
	if s, ok := detailInstructions[level]; ok {
		return s
	}
	return detailInstructions["normal"]
}

func languageLabel(code string) string {
	switch code {
	case "ru":
		return "Russian"
	case "en", "":
		return "English"
	default:
		return code
	}
}

// blockSchema documents the question block shapes the model may emit.
// Bodies are Markdown; the renderer converts them to HTML at package time.
const blockSchema = `Question blocks may use these types:
{"type": "mcq", "title": "...", "body": "question text", "options": [{"text": "...", "correct": true}, {"text": "...", "correct": false}], "feedback_correct": "...", "feedback_incorrect": "..."}
  (3-5 options, exactly one with correct: true)
{"type": "truefalse", "title": "...", "body": "a statement", "correct_answer": true, "feedback_correct": "...", "feedback_incorrect": "..."}
{"type": "fillin", "title": "...", "body": "sentence with a gap", "correct_answer": "the answer", "alternatives": ["accepted variant"]}
{"type": "matching", "title": "...", "body": "...", "pairs": [{"left": "...", "right": "..."}, {"left": "...", "right": "..."}]}
{"type": "ordering", "title": "...", "body": "...", "items": ["first step", "second step"]}`

func referenceSection(refText string) string {
	if refText == "" {
		return ""
	}
	return "\n\nGround the content in this reference material:\n---\n" + refText + "\n---"
}

func extraSection(extra string) string {
	if extra == "" {
		return ""
	}
	return "\n\nAdditional requirements:\n" + extra
}

// outlinePrompt requests module/section/sco titles only.
func outlinePrompt(p Params) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Design the outline of a training course on %q in %s.\n\n", p.Topic, languageLabel(p.Language))
	fmt.Fprintf(&sb, "The course has exactly %d modules, each module has %d sections, and each section has %d learning units.\n", p.Modules, p.SectionsPerModule, p.UnitsPerSection)
	sb.WriteString("Produce titles only, no content yet.")
	sb.WriteString(referenceSection(p.ReferenceText))
	sb.WriteString(extraSection(p.ExtraInstructions))
	fmt.Fprintf(&sb, `

Return JSON in this exact shape:
{
  "title": "Course title",
  "description": "One or two sentences describing the course",
  "language": %q,
  "modules": [
    {
      "title": "Module title",
      "sections": [
        {
          "title": "Section title",
          "scos": [
            {"title": "Unit title"}
          ]
        }
      ]
    }
  ]
}

Return ONLY the JSON, no explanations and no markdown.`, p.Language)
	return sb.String()
}

// unitPrompt requests screens and knowledge-check questions for one unit,
// carrying the whole outline as context.
func unitPrompt(p Params, outline, unitTitle string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are writing one unit of a course titled %q in %s.\n\nCourse outline:\n%s\n\n", p.Topic, languageLabel(p.Language), outline)
	fmt.Fprintf(&sb, "Write the unit %q. It has exactly %d theory screens and %d knowledge-check questions.\n", unitTitle, p.ScreensPerUnit, p.QuestionsPerUnit)
	sb.WriteString(detailInstruction(p.DetailLevel))
	sb.WriteString("\nText block bodies are Markdown (headings, lists, emphasis, code allowed).")
	sb.WriteString(referenceSection(p.ReferenceText))
	sb.WriteString(extraSection(p.ExtraInstructions))
	sb.WriteString(`

Return JSON in this exact shape:
{
  "screens": [
    {
      "title": "Screen title",
      "blocks": [
        {"type": "text", "title": "Block heading", "body": "Markdown theory text"}
      ]
    }
  ],
  "knowledge_check": [ ...question blocks... ]
}

` + blockSchema + `

Return ONLY the JSON, no explanations and no markdown fences.`)
	return sb.String()
}

// finalTestPrompt requests the final assessment over the whole outline.
func finalTestPrompt(p Params, outline string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write the final assessment for a course on %q in %s.\n\nCourse outline:\n%s\n\n", p.Topic, languageLabel(p.Language), outline)
	fmt.Fprintf(&sb, "Produce exactly %d questions spanning the whole course, mixing question types.\n", p.FinalTestQuestions)
	sb.WriteString(extraSection(p.ExtraInstructions))
	sb.WriteString(`

Return JSON in this exact shape:
{"questions": [ ...question blocks... ]}

` + blockSchema + `

Return ONLY the JSON, no explanations and no markdown fences.`)
	return sb.String()
}

// outlineContext renders the generated outline as an indented text listing
// for use as context in later prompts.
func outlineContext(doc *course.Document) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", doc.Title)
	for mi, mod := range doc.Modules {
		fmt.Fprintf(&sb, "%d. %s\n", mi+1, mod.Title)
		for si, sec := range mod.Sections {
			fmt.Fprintf(&sb, "  %d.%d. %s\n", mi+1, si+1, sec.Title)
			for _, sco := range sec.SCOs {
				fmt.Fprintf(&sb, "    - %s\n", sco.Title)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
