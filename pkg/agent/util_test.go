package agent

import (
	"testing"
)

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	type summary struct {
		Summary string `json:"summary"`
		Count   int    `json:"count,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  summary
	}{
		{
			name:  "valid json object",
			input: `{"summary":"Two related tasks"}`,
			want:  summary{Summary: "Two related tasks"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{summary: 'Two related tasks'}`,
			want:  summary{Summary: "Two related tasks"},
		},
		{
			name:  "trailing comma",
			input: `{"summary":"Two related tasks",}`,
			want:  summary{Summary: "Two related tasks"},
		},
		{
			name:  "missing endbracket",
			input: `{"summary":"Two related tasks`,
			want:  summary{Summary: "Two related tasks"},
		},
		{
			name:  "stringified invalid json object",
			input: `"{summary: 'Two related tasks'}"`,
			want:  summary{Summary: "Two related tasks"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"summary\": \"Two related tasks\"\n}\n",
			want:  summary{Summary: "Two related tasks"},
		},
		{
			name:  "duplicate leading brace no newlines",
			input: `{ { "summary": "Two related tasks" }`,
			want:  summary{Summary: "Two related tasks"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got summary
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Summary != tc.want.Summary || got.Count != tc.want.Count {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_ArrayVariants(t *testing.T) {
	type item struct {
		Title string `json:"title"`
	}

	input := `[{title:'A'},{title:'B',}]`
	var got []item
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got) != 2 || got[0].Title != "A" || got[1].Title != "B" {
		t.Fatalf("UnmarshalFlexible() got = %+v, want two items A,B", got)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	type summary struct {
		Summary string `json:"summary"`
	}

	var got summary
	if err := UnmarshalFlexible("hello", &got); err == nil {
		t.Fatalf("UnmarshalFlexible() expected error for unrecoverable input")
	}
}

func TestUnmarshalFlexible_StringifiedWithNewlines(t *testing.T) {
	type digest struct {
		Summary string   `json:"summary"`
		Topics  []string `json:"topics"`
	}

	input := `"{\n  \"summary\": \"Deployment work\",\n  \"topics\": [\"ci\", \"docker\", \"release automation (e.g., tags, changelogs)\"]\n  }\n"`
	want := digest{
		Summary: "Deployment work",
		Topics:  []string{"ci", "docker", "release automation (e.g., tags, changelogs)"},
	}

	var got digest
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if got.Summary != want.Summary {
		t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, want)
	}
	if len(got.Topics) != len(want.Topics) {
		t.Fatalf("UnmarshalFlexible() topics length got = %d, want %d", len(got.Topics), len(want.Topics))
	}
	for i := range got.Topics {
		if got.Topics[i] != want.Topics[i] {
			t.Fatalf("UnmarshalFlexible() topics[%d] = %q, want %q", i, got.Topics[i], want.Topics[i])
		}
	}
}
