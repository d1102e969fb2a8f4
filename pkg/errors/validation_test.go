package errors

import (
	"testing"
)

func TestValidateInputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "plans/CS26.csv", false},
		{"valid absolute", "/tmp/plan.json", false},
		{"valid spaces", "Degree Plan.csv", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 1100)), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateInputPath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestParseCourseID(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"12", 12, false},
		{" 7 ", 7, false},
		{"-3", -3, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCourseID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCourseID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCourseID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
