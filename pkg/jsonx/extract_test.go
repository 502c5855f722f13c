package jsonx

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json_fence",
			input: "```json\n{\"origin\": \"DEL\"}\n```",
			want:  `{"origin": "DEL"}`,
		},
		{
			name:  "plain_fence",
			input: "```\n[1, 2, 3]\n```",
			want:  `[1, 2, 3]`,
		},
		{
			name:  "fence_with_prose_around",
			input: "Here you go:\n```json\n{\"a\":1}\n```\nLet me know!",
			want:  `{"a":1}`,
		},
		{
			name:  "bare_object",
			input: "  {\"destination\": \"BOM\"}  ",
			want:  `{"destination": "BOM"}`,
		},
		{
			name:  "bare_array",
			input: `[{"flight_number":"AI123"}]`,
			want:  `[{"flight_number":"AI123"}]`,
		},
		{
			name:  "object_buried_in_prose",
			input: `The parameters are {"origin":"DEL","destination":"BOM"} as requested.`,
			want:  `{"origin":"DEL","destination":"BOM"}`,
		},
		{
			name:  "no_json_at_all",
			input: "sorry, I cannot help with that",
			want:  "sorry, I cannot help with that",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.input); got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}
