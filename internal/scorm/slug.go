package scorm

import (
	"regexp"
	"strings"
)

// Cyrillic transliteration for archive and identifier slugs.
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e",
	'ё': "yo", 'ж': "zh", 'з': "z", 'и': "i", 'й': "j", 'к': "k",
	'л': "l", 'м': "m", 'н': "n", 'о': "o", 'п': "p", 'р': "r",
	'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts",
	'ч': "ch", 'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y",
	'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

var multiHyphenRe = regexp.MustCompile(`-{2,}`)

// Slugify converts a title to a filesystem- and identifier-safe slug,
// transliterating Cyrillic. Falls back to "course" for empty results.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if t, ok := translit[r]; ok {
			b.WriteString(t)
			continue
		}
		switch {
		case r < 128 && (r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')):
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteByte('-')
		}
	}
	slug := multiHyphenRe.ReplaceAllString(b.String(), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "course"
	}
	return slug
}
