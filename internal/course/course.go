// Package course defines the course document model shared by the generation
// orchestrator and the SCORM compiler, along with its structural validator
// and the legacy-format normalizer.
package course

import "encoding/json"

// Block kinds.
const (
	BlockText      = "text"
	BlockMCQ       = "mcq"
	BlockTrueFalse = "truefalse"
	BlockFillIn    = "fillin"
	BlockMatching  = "matching"
	BlockOrdering  = "ordering"
)

// KnownBlockTypes lists every block kind the pipeline understands.
var KnownBlockTypes = map[string]bool{
	BlockText:      true,
	BlockMCQ:       true,
	BlockTrueFalse: true,
	BlockFillIn:    true,
	BlockMatching:  true,
	BlockOrdering:  true,
}

// Option is one answer choice in an mcq block.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Pair is one left/right association in a matching block.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Block is one content or question block. The wire shape is discriminated by
// "type", and "correct_answer" is a bool for truefalse but a string for
// fillin, so (un)marshaling is done by hand. Unknown types and malformed
// type-specific fields never fail decoding; the validator reports them.
type Block struct {
	Type  string
	Title string
	Body  string

	Options      []Option // mcq
	AnswerBool   *bool    // truefalse
	AnswerText   string   // fillin
	Alternatives []string // fillin: additional accepted answers
	Pairs        []Pair   // matching
	Items        []string // ordering

	FeedbackCorrect   string
	FeedbackIncorrect string
}

type blockWire struct {
	Type              string          `json:"type"`
	Title             string          `json:"title,omitempty"`
	Body              string          `json:"body,omitempty"`
	Options           []Option        `json:"options,omitempty"`
	CorrectAnswer     json.RawMessage `json:"correct_answer,omitempty"`
	Alternatives      []string        `json:"alternatives,omitempty"`
	Pairs             []Pair          `json:"pairs,omitempty"`
	Items             []string        `json:"items,omitempty"`
	FeedbackCorrect   string          `json:"feedback_correct,omitempty"`
	FeedbackIncorrect string          `json:"feedback_incorrect,omitempty"`
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var w blockWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*b = Block{
		Type:              w.Type,
		Title:             w.Title,
		Body:              w.Body,
		Options:           w.Options,
		Alternatives:      w.Alternatives,
		Pairs:             w.Pairs,
		Items:             w.Items,
		FeedbackCorrect:   w.FeedbackCorrect,
		FeedbackIncorrect: w.FeedbackIncorrect,
	}
	if len(w.CorrectAnswer) == 0 {
		return nil
	}
	switch w.Type {
	case BlockTrueFalse:
		var v bool
		if err := json.Unmarshal(w.CorrectAnswer, &v); err == nil {
			b.AnswerBool = &v
		}
	case BlockFillIn:
		var s string
		if err := json.Unmarshal(w.CorrectAnswer, &s); err == nil {
			b.AnswerText = s
		}
	}
	return nil
}

func (b Block) MarshalJSON() ([]byte, error) {
	w := blockWire{
		Type:              b.Type,
		Title:             b.Title,
		Body:              b.Body,
		Options:           b.Options,
		Alternatives:      b.Alternatives,
		Pairs:             b.Pairs,
		Items:             b.Items,
		FeedbackCorrect:   b.FeedbackCorrect,
		FeedbackIncorrect: b.FeedbackIncorrect,
	}
	switch b.Type {
	case BlockTrueFalse:
		if b.AnswerBool != nil {
			raw, err := json.Marshal(*b.AnswerBool)
			if err != nil {
				return nil, err
			}
			w.CorrectAnswer = raw
		}
	case BlockFillIn:
		if b.AnswerText != "" {
			raw, err := json.Marshal(b.AnswerText)
			if err != nil {
				return nil, err
			}
			w.CorrectAnswer = raw
		}
	}
	return json.Marshal(w)
}

// CorrectOptionCount returns how many options are marked correct.
func (b Block) CorrectOptionCount() int {
	n := 0
	for _, opt := range b.Options {
		if opt.Correct {
			n++
		}
	}
	return n
}

// IsQuestion reports whether the block is gradable.
func (b Block) IsQuestion() bool {
	return KnownBlockTypes[b.Type] && b.Type != BlockText
}

// Settings holds the SCORM runtime parameters stamped into the manifest.
type Settings struct {
	PassingScore   int `json:"passing_score"`
	MaxAttempts    int `json:"max_attempts"`
	MaxTimeMinutes int `json:"max_time_minutes"`
}

// Fixed defaults applied when a settings field is unset.
const (
	DefaultPassingScore   = 80
	DefaultMaxAttempts    = 3
	DefaultMaxTimeMinutes = 60
)

// WithDefaults fills unset settings fields with the fixed defaults.
func (s Settings) WithDefaults() Settings {
	if s.PassingScore <= 0 {
		s.PassingScore = DefaultPassingScore
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = DefaultMaxAttempts
	}
	if s.MaxTimeMinutes <= 0 {
		s.MaxTimeMinutes = DefaultMaxTimeMinutes
	}
	return s
}

// Screen is one theory page inside a SCO.
type Screen struct {
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// SCO is the smallest independently trackable unit in the hierarchy.
type SCO struct {
	Title          string   `json:"title"`
	Screens        []Screen `json:"screens"`
	KnowledgeCheck []Block  `json:"knowledge_check"`
}

// Section groups SCOs inside a module.
type Section struct {
	Title string `json:"title"`
	SCOs  []SCO  `json:"scos"`
}

// Module is the top hierarchy level below the course itself.
type Module struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Page is the legacy flat shape: a titled list of blocks. Accepted on input
// only; Normalize converts it to the module/section/sco hierarchy.
type Page struct {
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// Document is the full course tree. It is produced either by the generation
// orchestrator or by loading an authored file, and is read-only once it
// reaches the SCORM compiler.
type Document struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Language    string   `json:"language,omitempty"`
	Settings    Settings `json:"settings"`
	Modules     []Module `json:"modules"`
	FinalTest   []Block  `json:"final_test"`

	// Legacy input shape; empty after Normalize.
	Pages []Page `json:"pages,omitempty"`
}

// UnitCount returns the number of SCOs across all modules and sections.
func (d *Document) UnitCount() int {
	n := 0
	for _, mod := range d.Modules {
		for _, sec := range mod.Sections {
			n += len(sec.SCOs)
		}
	}
	return n
}
