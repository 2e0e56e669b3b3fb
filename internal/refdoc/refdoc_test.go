package refdoc

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"notes.txt", "text"},
		{"README.md", "markdown"},
		{"doc.MARKDOWN", "markdown"},
		{"page.html", "html"},
		{"page.htm", "html"},
		{"paper.pdf", "pdf"},
		{"report.docx", "docx"},
	}
	for _, tt := range tests {
		got, err := ForFile(tt.filename)
		if err != nil {
			t.Errorf("ForFile(%q): %v", tt.filename, err)
			continue
		}
		if name := typeName(got); name != tt.want {
			t.Errorf("ForFile(%q) = %s, want %s", tt.filename, name, tt.want)
		}
	}

	if _, err := ForFile("archive.tar.gz"); err == nil {
		t.Error("ForFile accepted an unsupported extension")
	}
	if IsSupported("slides.pptx") {
		t.Error("IsSupported accepted pptx")
	}
	if !IsSupported("NOTES.TXT") {
		t.Error("IsSupported is case sensitive")
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *TextExtractor:
		return "text"
	case *MarkdownExtractor:
		return "markdown"
	case *HTMLExtractor:
		return "html"
	case *PDFExtractor:
		return "pdf"
	case *DOCXExtractor:
		return "docx"
	default:
		return "unknown"
	}
}

func TestTextExtractor(t *testing.T) {
	input := "First paragraph\nstill first.\n\n\nSecond paragraph.\n\n   \nThird.\n"
	doc, err := (&TextExtractor{}).Extract(strings.NewReader(input), "/tmp/notes.txt")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.Title != "notes" {
		t.Errorf("Title = %q, want %q", doc.Title, "notes")
	}
	want := "First paragraph\nstill first.\n\nSecond paragraph.\n\nThird."
	if doc.Text != want {
		t.Errorf("Text = %q, want %q", doc.Text, want)
	}
}

func TestMarkdownExtractor(t *testing.T) {
	input := "# Go Guide\n\nIntro paragraph with **bold** text.\n\n## Install\n\n- step one\n- step two\n"
	doc, err := (&MarkdownExtractor{}).Extract(strings.NewReader(input), "guide.md")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.Title != "Go Guide" {
		t.Errorf("Title = %q, want heading promotion", doc.Title)
	}
	for _, want := range []string{"Go Guide", "Intro paragraph", "Install", "step one"} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("Text missing %q in %q", want, doc.Text)
		}
	}
	if strings.Contains(doc.Text, "**") {
		t.Error("markdown markup leaked into extracted text")
	}
}

func TestMarkdownExtractorNoHeading(t *testing.T) {
	doc, err := (&MarkdownExtractor{}).Extract(strings.NewReader("Just prose."), "plain.md")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.Title != "plain" {
		t.Errorf("Title = %q, want filename fallback", doc.Title)
	}
}

func TestHTMLExtractor(t *testing.T) {
	input := `<!DOCTYPE html>
<html>
<head><title>Go Tutorial</title><style>body{color:red}</style></head>
<body>
<nav><a href="/">Home</a></nav>
<h1>Getting Started</h1>
<p>Install the toolchain.</p>
<script>alert("hi")</script>
<ul><li>point one</li></ul>
<footer>copyright</footer>
</body>
</html>`
	doc, err := (&HTMLExtractor{}).Extract(strings.NewReader(input), "tutorial.html")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if doc.Title != "Go Tutorial" {
		t.Errorf("Title = %q", doc.Title)
	}
	for _, want := range []string{"Getting Started", "Install the toolchain.", "point one"} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("Text missing %q in %q", want, doc.Text)
		}
	}
	for _, banned := range []string{"alert", "color:red", "Home", "copyright"} {
		if strings.Contains(doc.Text, banned) {
			t.Errorf("Text leaked %q", banned)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(empty) = %d", got)
	}
	if got := EstimateTokens("one"); got != 1 {
		t.Errorf("EstimateTokens(one word) = %d", got)
	}
	// 100 words at 1.33 tokens each.
	text := strings.Repeat("word ", 100)
	if got := EstimateTokens(text); got != 133 {
		t.Errorf("EstimateTokens(100 words) = %d, want 133", got)
	}
}

func TestTruncate(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 100))

	if got := Truncate(text, 0); got != text {
		t.Error("non-positive budget truncated")
	}
	if got := Truncate(text, 1000); got != text {
		t.Error("generous budget truncated")
	}

	got := Truncate(text, 50)
	words := strings.Fields(got)
	if len(words) >= 100 {
		t.Errorf("Truncate kept %d words", len(words))
	}
	if EstimateTokens(got) > 50 {
		t.Errorf("truncated text still estimates %d tokens", EstimateTokens(got))
	}
	if strings.HasSuffix(got, " ") {
		t.Error("truncated text has a dangling space")
	}
}
