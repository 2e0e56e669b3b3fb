package scorm

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Go Basics", "go-basics"},
		{"Основы Python", "osnovy-python"},
		{"Жизнь в Щёлково", "zhizn-v-shchyolkovo"},
		{"C++  for   beginners!", "c-for-beginners"},
		{"already-slugged_name", "already-slugged_name"},
		{"   ", "course"},
		{"", "course"},
		{"!!!", "course"},
		{"--Edge--Case--", "edge-case"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
