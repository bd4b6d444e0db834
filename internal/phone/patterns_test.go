package phone

import "testing"

// TestNormalize tests number canonicalization.
func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"+972-52-1234567", "0521234567"},
		{"972521234567", "0521234567"},
		{"052-1234567", "0521234567"},
		{"052 123 4567", "0521234567"},
		{"0521234567", "0521234567"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.raw); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

// TestValid tests the mobile number predicate.
func TestValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		number string
		want   bool
	}{
		{"0521234567", true},
		{"0501234567", true},
		{"052123456", false},
		{"05212345678", false},
		{"0321234567", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := Valid(tt.number); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.number, got, tt.want)
		}
	}
}

// TestFirstMatch tests free-text scanning.
func TestFirstMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "local form",
			text: "להתקשר: 052-1234567 בערב",
			want: "0521234567",
		},
		{
			name: "international form wins over its local tail",
			text: "call +972-52-1234567 now",
			want: "0521234567",
		},
		{
			name: "spaced form",
			text: "טלפון 052 123 4567",
			want: "0521234567",
		},
		{
			name: "landline is ignored",
			text: "04-8123456",
			want: "",
		},
		{
			name: "no number",
			text: "no contact details",
			want: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FirstMatch(tt.text); got != tt.want {
				t.Errorf("FirstMatch = %q, want %q", got, tt.want)
			}
		})
	}
}
