// Package scorm compiles a validated course document into a SCORM 1.2
// package: it assigns identifiers to every tree node, renders the manifest
// and the per-unit HTML content, and assembles the zip archive.
package scorm

import (
	"fmt"

	"github.com/akozlov/scormgen/internal/course"
)

// FinalTestFilename is the content file of the course-wide assessment.
const FinalTestFilename = "final_test.html"

// LeafNode maps one trackable unit (SCO or final test) to its identifiers
// and content filename.
type LeafNode struct {
	ItemID     string
	ResourceID string
	Filename   string
	Title      string
}

// SectionNode mirrors one course section.
type SectionNode struct {
	ItemID string
	Title  string
	Units  []LeafNode
}

// ModuleNode mirrors one course module.
type ModuleNode struct {
	ItemID   string
	Title    string
	Sections []SectionNode
}

// Tree is the identifier tree for one compile. It is derived fresh from the
// document on every compile and never persisted on its own.
type Tree struct {
	OrgID     string
	Title     string
	Modules   []ModuleNode
	FinalTest *LeafNode
}

// CompileTree walks modules, sections and units in document order and
// assigns collision-free identifiers: per-level indices for containers and a
// document-wide sequence number for units. The same document always yields
// the same tree.
func CompileTree(doc *course.Document) *Tree {
	t := &Tree{OrgID: defaultOrgID, Title: doc.Title}

	unitSeq := 0
	for mi, mod := range doc.Modules {
		mn := ModuleNode{
			ItemID: fmt.Sprintf("item_module_%d", mi+1),
			Title:  mod.Title,
		}
		for si, sec := range mod.Sections {
			sn := SectionNode{
				ItemID: fmt.Sprintf("item_module_%d_section_%d", mi+1, si+1),
				Title:  sec.Title,
			}
			for ui, sco := range sec.SCOs {
				unitSeq++
				sn.Units = append(sn.Units, LeafNode{
					ItemID:     fmt.Sprintf("item_sco_%d", unitSeq),
					ResourceID: fmt.Sprintf("res_sco_%d", unitSeq),
					Filename:   fmt.Sprintf("sco_%d_%d_%d.html", mi+1, si+1, ui+1),
					Title:      sco.Title,
				})
			}
			mn.Sections = append(mn.Sections, sn)
		}
		t.Modules = append(t.Modules, mn)
	}

	if len(doc.FinalTest) > 0 {
		t.FinalTest = &LeafNode{
			ItemID:     "item_final_test",
			ResourceID: "res_final_test",
			Filename:   FinalTestFilename,
			Title:      finalTestTitle(doc.Language),
		}
	}
	return t
}

// Leaves returns every trackable node in package order: units in document
// order, then the final test if present.
func (t *Tree) Leaves() []LeafNode {
	var leaves []LeafNode
	for _, mod := range t.Modules {
		for _, sec := range mod.Sections {
			leaves = append(leaves, sec.Units...)
		}
	}
	if t.FinalTest != nil {
		leaves = append(leaves, *t.FinalTest)
	}
	return leaves
}
