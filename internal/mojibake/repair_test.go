package mojibake

import "testing"

func TestRepair(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "ascii passthrough",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "double encoded accent",
			input: "cafÃ©",
			want:  "café",
		},
		{
			name:  "double encoded polish",
			input: "Å¼Ã³Åw",
			want:  "żółw",
		},
		{
			name:  "double encoded heart emoji",
			input: "â¤ï¸",
			want:  "❤️",
		},
		{
			name:  "already correct polish is untouched",
			input: "Jakiś tekst po polsku",
			want:  "Jakiś tekst po polsku",
		},
		{
			name:  "correct single encoded accent is untouched",
			input: "café",
			want:  "café",
		},
		{
			name:  "latin letters that do not form utf8 are untouched",
			input: "naïve",
			want:  "naïve",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(tt.input)
			if got != tt.want {
				t.Errorf("Repair(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepairIdempotent(t *testing.T) {
	// Once repaired, a second pass must not change the text again.
	inputs := []string{
		"cafÃ©",
		"Å¼Ã³Åw",
		"â¤ï¸",
		"plain ascii",
	}
	for _, in := range inputs {
		once := Repair(in)
		twice := Repair(once)
		if once != twice {
			t.Errorf("Repair not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
