package course

import (
	"fmt"
	"strings"
)

// Validate checks the structural invariants of a course document and returns
// a list of human-readable defects. An empty list means the document is
// valid. Validate never mutates its input and never panics on malformed
// content; callers decide whether defects are fatal.
func Validate(doc *Document) []string {
	if doc == nil {
		return []string{"course document is empty"}
	}

	var defects []string
	if strings.TrimSpace(doc.Title) == "" {
		defects = append(defects, "course is missing a title")
	}
	if len(doc.Modules) == 0 {
		return append(defects, "course has no modules")
	}

	for mi, mod := range doc.Modules {
		where := fmt.Sprintf("module %d", mi+1)
		if strings.TrimSpace(mod.Title) == "" {
			defects = append(defects, where+" is missing a title")
		}
		if len(mod.Sections) == 0 {
			defects = append(defects, where+" has no sections")
			continue
		}
		for si, sec := range mod.Sections {
			secWhere := fmt.Sprintf("%s, section %d", where, si+1)
			if len(sec.SCOs) == 0 {
				defects = append(defects, secWhere+" has no scos")
				continue
			}
			for ui, sco := range sec.SCOs {
				scoWhere := fmt.Sprintf("%s, sco %d", secWhere, ui+1)
				if sco.Title != "" {
					scoWhere = fmt.Sprintf("%s (%q)", scoWhere, sco.Title)
				}
				if len(sco.Screens) == 0 {
					defects = append(defects, scoWhere+" has no screens")
				}
				for _, screen := range sco.Screens {
					for bi, block := range screen.Blocks {
						defects = append(defects, validateBlock(fmt.Sprintf("%s, screen %q, block %d", scoWhere, screen.Title, bi+1), block)...)
					}
				}
				for bi, block := range sco.KnowledgeCheck {
					defects = append(defects, validateBlock(fmt.Sprintf("%s, knowledge check %d", scoWhere, bi+1), block)...)
				}
			}
		}
	}

	for qi, block := range doc.FinalTest {
		defects = append(defects, validateBlock(fmt.Sprintf("final test question %d", qi+1), block)...)
	}

	return defects
}

// validateBlock applies the per-kind invariants from the block type table.
func validateBlock(where string, b Block) []string {
	var defects []string
	switch b.Type {
	case BlockText:
		// No extra invariant.
	case BlockMCQ:
		if len(b.Options) < 2 {
			defects = append(defects, fmt.Sprintf("%s: mcq needs at least 2 options (got %d)", where, len(b.Options)))
		}
		if n := b.CorrectOptionCount(); n != 1 {
			defects = append(defects, fmt.Sprintf("%s: mcq needs exactly 1 correct option (got %d)", where, n))
		}
	case BlockTrueFalse:
		if b.AnswerBool == nil {
			defects = append(defects, where+": truefalse is missing correct_answer")
		}
	case BlockFillIn:
		if strings.TrimSpace(b.AnswerText) == "" {
			defects = append(defects, where+": fillin is missing correct_answer")
		}
	case BlockMatching:
		if len(b.Pairs) < 2 {
			defects = append(defects, fmt.Sprintf("%s: matching needs at least 2 pairs (got %d)", where, len(b.Pairs)))
		}
	case BlockOrdering:
		if len(b.Items) < 2 {
			defects = append(defects, fmt.Sprintf("%s: ordering needs at least 2 items (got %d)", where, len(b.Items)))
		}
	default:
		defects = append(defects, fmt.Sprintf("%s: unknown block type %q", where, b.Type))
	}
	return defects
}
