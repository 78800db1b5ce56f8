package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name    string
		input   []float64
		code    Code
		wantErr bool
	}{
		{"empty", nil, "", false},
		{"positive", []float64{1, 2.5, 100}, "", false},
		{"zeros allowed", []float64{0, 0, 3}, "", false},

		{"negative", []float64{1, -2}, ErrCodeInvalidWeight, true},
		{"nan", []float64{math.NaN()}, ErrCodeInvalidWeight, true},
		{"inf", []float64{math.Inf(1)}, ErrCodeInvalidWeight, true},
		{"too many", make([]float64, MaxItems+1), ErrCodeInvalidInput, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeights(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateWeights() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !Is(err, tt.code) {
				t.Errorf("ValidateWeights() code = %v, want %v", GetCode(err), tt.code)
			}
		})
	}
}

func TestValidateContainer(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		wantErr       bool
	}{
		{"valid", 800, 600, false},
		{"tiny", 0.001, 0.001, false},

		{"zero width", 0, 600, true},
		{"zero height", 800, 0, true},
		{"negative", -1, 600, true},
		{"nan", math.NaN(), 600, true},
		{"inf", 800, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContainer(tt.width, tt.height)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContainer(%v, %v) error = %v, wantErr %v", tt.width, tt.height, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidContainer) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidContainer)
			}
		})
	}
}

func TestValidateWeightKey(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"value", false},
		{"market_value", false},
		{"", true},
		{"  ", true},
		{"x", true},
		{"h", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateWeightKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWeightKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "portfolio.csv", false},
		{"nested", "out/heatmap.svg", false},
		{"absolute", "/tmp/heatmap.svg", false},
		{"dotted name", "my..file.svg", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"traversal", "../etc/passwd", true},
		{"traversal middle", "out/../../x", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLayoutID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"3f2b1c9e-6a0d-4b8e-9f5c-2d7a1e4b8c60", false},
		{"abc123", false},
		{"", true},
		{"a/b", true},
		{"$where", true},
		{strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateLayoutID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLayoutID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
