package scorm

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/akozlov/scormgen/internal/course"
)

//go:embed templates/*.html
var templateFS embed.FS

// StyleCSS and BridgeJS are copied byte-for-byte into every package.
//
//go:embed assets/style.css
var StyleCSS []byte

//go:embed assets/scorm_api.js
var BridgeJS []byte

// Renderer turns course content into the HTML pages packaged as SCOs. Block
// bodies are Markdown and are converted once per render.
type Renderer struct {
	tmpl *template.Template
	md   goldmark.Markdown
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
	tmpl, err := template.New("scorm").Funcs(template.FuncMap{
		"markdown": r.markdown,
		"add1":     func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

func (r *Renderer) markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

type screenView struct {
	Title  string
	Blocks []blockView
}

type blockView struct {
	Title    string
	BodyHTML template.HTML
}

type questionView struct {
	Index    int
	Type     string
	Title    string
	BodyHTML template.HTML

	Options       []string      // mcq
	Pairs         []course.Pair // matching, left column in document order
	DisplayRights []string      // matching, right column sorted for display
	DisplayItems  []string      // ordering, sorted for display
}

type labels struct {
	Quiz   string
	Submit string
	True   string
	False  string
}

// questionKey is the grading data embedded into the page for the player
// script. The answer shape depends on the question type.
type questionKey struct {
	Type              string `json:"type"`
	Answer            any    `json:"answer"`
	FeedbackCorrect   string `json:"feedback_correct,omitempty"`
	FeedbackIncorrect string `json:"feedback_incorrect,omitempty"`
}

type playerConfig struct {
	PassingScore int           `json:"passing_score"`
	MaxAttempts  int           `json:"max_attempts"`
	Questions    []questionKey `json:"questions"`
	MsgPass      string        `json:"msg_pass"`
	MsgFail      string        `json:"msg_fail"`
	MsgScore     string        `json:"msg_score"`
}

type pageData struct {
	Lang      string
	Title     string
	Heading   string
	Screens   []screenView
	Questions []questionView
	Labels    labels
	Config    template.JS
}

// RenderSCO renders the content page for one unit: its theory screens
// followed by the knowledge check, if any.
func (r *Renderer) RenderSCO(doc *course.Document, sco course.SCO) ([]byte, error) {
	data, err := r.pageData(doc, sco.Title, sco.Screens, sco.KnowledgeCheck)
	if err != nil {
		return nil, err
	}
	return r.execute("sco.html", data)
}

// RenderFinalTest renders the course-wide assessment page.
func (r *Renderer) RenderFinalTest(doc *course.Document) ([]byte, error) {
	data, err := r.pageData(doc, finalTestTitle(doc.Language), nil, doc.FinalTest)
	if err != nil {
		return nil, err
	}
	return r.execute("final_test.html", data)
}

func (r *Renderer) pageData(doc *course.Document, title string, screens []course.Screen, questions []course.Block) (pageData, error) {
	lang := doc.Language
	if lang == "" {
		lang = "en"
	}

	data := pageData{
		Lang:    lang,
		Title:   title,
		Heading: title,
		Labels:  labelsFor(lang),
	}
	for _, screen := range screens {
		sv := screenView{Title: screen.Title}
		for _, block := range screen.Blocks {
			if block.Type != course.BlockText {
				continue
			}
			body, err := r.markdown(block.Body)
			if err != nil {
				return pageData{}, err
			}
			sv.Blocks = append(sv.Blocks, blockView{Title: block.Title, BodyHTML: body})
		}
		data.Screens = append(data.Screens, sv)
	}

	views, keys, err := r.buildQuiz(questions)
	if err != nil {
		return pageData{}, err
	}
	data.Questions = views

	settings := doc.Settings.WithDefaults()
	cfg := playerConfig{
		PassingScore: settings.PassingScore,
		MaxAttempts:  settings.MaxAttempts,
		Questions:    keys,
	}
	cfg.MsgPass, cfg.MsgFail, cfg.MsgScore = resultMessages(lang)
	raw, err := json.Marshal(cfg)
	if err != nil {
		return pageData{}, fmt.Errorf("marshal player config: %w", err)
	}
	data.Config = template.JS(raw)
	return data, nil
}

func (r *Renderer) buildQuiz(blocks []course.Block) ([]questionView, []questionKey, error) {
	var views []questionView
	var keys []questionKey
	for _, block := range blocks {
		if !block.IsQuestion() {
			continue
		}
		body, err := r.markdown(block.Body)
		if err != nil {
			return nil, nil, err
		}
		view := questionView{
			Index:    len(views),
			Type:     block.Type,
			Title:    block.Title,
			BodyHTML: body,
		}
		key := questionKey{
			Type:              block.Type,
			FeedbackCorrect:   block.FeedbackCorrect,
			FeedbackIncorrect: block.FeedbackIncorrect,
		}

		switch block.Type {
		case course.BlockMCQ:
			correct := 0
			for i, opt := range block.Options {
				view.Options = append(view.Options, opt.Text)
				if opt.Correct {
					correct = i
				}
			}
			key.Answer = correct

		case course.BlockTrueFalse:
			answer := false
			if block.AnswerBool != nil {
				answer = *block.AnswerBool
			}
			key.Answer = answer

		case course.BlockFillIn:
			accepted := []string{normalizeAnswer(block.AnswerText)}
			for _, alt := range block.Alternatives {
				accepted = append(accepted, normalizeAnswer(alt))
			}
			key.Answer = accepted

		case course.BlockMatching:
			view.Pairs = block.Pairs
			// Duplicate right-hand values collapse to one display entry so
			// every row maps to an unambiguous index.
			seen := make(map[string]bool, len(block.Pairs))
			var rights []string
			for _, p := range block.Pairs {
				if !seen[p.Right] {
					seen[p.Right] = true
					rights = append(rights, p.Right)
				}
			}
			sort.Strings(rights)
			view.DisplayRights = rights
			answer := make([]int, len(block.Pairs))
			for i, p := range block.Pairs {
				answer[i] = indexOf(rights, p.Right)
			}
			key.Answer = answer

		case course.BlockOrdering:
			items := append([]string(nil), block.Items...)
			sort.Strings(items)
			view.DisplayItems = items
			// Each display row consumes one occurrence so repeated items get
			// distinct positions.
			used := make([]bool, len(block.Items))
			answer := make([]int, len(items))
			for i, item := range items {
				for j, orig := range block.Items {
					if !used[j] && orig == item {
						used[j] = true
						answer[i] = j + 1
						break
					}
				}
			}
			key.Answer = answer
		}

		views = append(views, view)
		keys = append(keys, key)
	}
	return views, keys, nil
}

func (r *Renderer) execute(name string, data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

type indexData struct {
	Lang    string
	Title   string
	Tree    *Tree
	Summary string
}

// RenderIndex renders a plain table of contents for the archive. The page is
// listed as its own manifest resource but is not part of the organization
// tree; it exists so the package can be previewed outside an LMS.
func (r *Renderer) RenderIndex(doc *course.Document, t *Tree) ([]byte, error) {
	lang := doc.Language
	if lang == "" {
		lang = "en"
	}
	var buf bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&buf, "index.html", indexData{
		Lang:    lang,
		Title:   doc.Title,
		Tree:    t,
		Summary: doc.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("render index.html: %w", err)
	}
	return buf.Bytes(), nil
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}

func labelsFor(lang string) labels {
	if lang == "ru" {
		return labels{Quiz: "Проверка знаний", Submit: "Проверить", True: "Верно", False: "Неверно"}
	}
	return labels{Quiz: "Knowledge Check", Submit: "Submit", True: "True", False: "False"}
}

func finalTestTitle(lang string) string {
	if lang == "ru" {
		return "Итоговый тест"
	}
	return "Final Test"
}

func resultMessages(lang string) (pass, fail, score string) {
	if lang == "ru" {
		return "Пройдено", "Не пройдено", "Ваш результат"
	}
	return "Passed", "Not passed", "Your score"
}
