package llm

import (
	"errors"
	"testing"
)

func TestDecodeLenient(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "clean json",
			raw:  `{"title":"Go"}`,
			want: `{"title":"Go"}`,
		},
		{
			name: "surrounding whitespace",
			raw:  "\n  {\"a\":1}  \n",
			want: `{"a":1}`,
		},
		{
			name: "json fence",
			raw:  "```json\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "bare fence",
			raw:  "```\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "trailing comma in object",
			raw:  `{"a":1,}`,
			want: `{"a":1}`,
		},
		{
			name: "trailing comma in array",
			raw:  `{"a":[1,2,],}`,
			want: `{"a":[1,2]}`,
		},
		{
			name: "prose around object",
			raw:  "Here is the course:\n{\"a\":1}\nHope this helps!",
			want: `{"a":1}`,
		},
		{
			name: "fence and trailing comma combined",
			raw:  "```json\n{\"a\":[1,],}\n```",
			want: `{"a":[1]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLenient(tt.raw)
			if err != nil {
				t.Fatalf("DecodeLenient: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("DecodeLenient = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecodeLenientUnparsable(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{broken", "{\"a\": }"} {
		_, err := DecodeLenient(raw)
		if err == nil {
			t.Errorf("DecodeLenient(%q) succeeded", raw)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("DecodeLenient(%q) error = %T, want *ParseError", raw, err)
		}
	}
}
