package course

// Normalize converts a legacy flat page-list document into the current
// module/section/sco hierarchy, in place. Each legacy page becomes one SCO:
// its text blocks form a single introductory screen and everything else
// becomes the knowledge check. The migration regroups content without
// dropping any of it, and running it on an already-normalized document is a
// no-op.
func Normalize(doc *Document) {
	if doc == nil || len(doc.Modules) > 0 || len(doc.Pages) == 0 {
		return
	}

	scos := make([]SCO, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		var theory, check []Block
		for _, b := range page.Blocks {
			if b.Type == BlockText {
				theory = append(theory, b)
			} else {
				check = append(check, b)
			}
		}
		scos = append(scos, SCO{
			Title:          page.Title,
			Screens:        []Screen{{Title: page.Title, Blocks: theory}},
			KnowledgeCheck: check,
		})
	}

	doc.Modules = []Module{{
		Title:    doc.Title,
		Sections: []Section{{Title: doc.Title, SCOs: scos}},
	}}
	doc.Pages = nil
	if doc.FinalTest == nil {
		doc.FinalTest = []Block{}
	}
}
