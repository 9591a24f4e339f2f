package validation

import "testing"

func TestIsValidOrderNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{
			name:   "valid number",
			number: "ORD-1735689600000-A1B2C3",
			valid:  true,
		},
		{
			name:   "digits only suffix",
			number: "ORD-1735689600000-123456",
			valid:  true,
		},
		{
			name:   "wrong prefix",
			number: "ORDER-1735689600000-A1B2C3",
			valid:  false,
		},
		{
			name:   "lowercase suffix",
			number: "ORD-1735689600000-a1b2c3",
			valid:  false,
		},
		{
			name:   "short suffix",
			number: "ORD-1735689600000-A1B2",
			valid:  false,
		},
		{
			name:   "non-numeric timestamp",
			number: "ORD-17356x9600000-A1B2C3",
			valid:  false,
		},
		{
			name:   "empty string",
			number: "",
			valid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidOrderNumber(tt.number)
			if got != tt.valid {
				t.Fatalf("IsValidOrderNumber(%q) = %v, want %v", tt.number, got, tt.valid)
			}
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"a@b.co", true},
		{"no-at-sign", false},
		{"@example.com", false},
		{"user@", false},
		{"user@nodot", false},
		{"user@dot.", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := IsValidEmail(tt.email)
			if got != tt.valid {
				t.Fatalf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.valid)
			}
		})
	}
}

func TestIsValidPincode(t *testing.T) {
	tests := []struct {
		pincode string
		valid   bool
	}{
		{"560001", true},
		{"110001", true},
		{"056001", false},
		{"5600", false},
		{"56000a", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.pincode, func(t *testing.T) {
			got := IsValidPincode(tt.pincode)
			if got != tt.valid {
				t.Fatalf("IsValidPincode(%q) = %v, want %v", tt.pincode, got, tt.valid)
			}
		})
	}
}

func TestIsValidPromoCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"WELCOME10", true},
		{"SAVE5", true},
		{"ab", false},
		{"lower10", false},
		{"WITH SPACE", false},
		{"WAYTOOLONGPROMOCODE2024XX", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := IsValidPromoCode(tt.code)
			if got != tt.valid {
				t.Fatalf("IsValidPromoCode(%q) = %v, want %v", tt.code, got, tt.valid)
			}
		})
	}
}
