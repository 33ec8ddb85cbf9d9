package application

import (
	"errors"
	"strings"
	"testing"

	"phylorank/internal/domain"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
		wantMsg   string
	}{
		{
			name:      "valid value",
			fieldName: "inputTree",
			value:     "bac.tree",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "inputTree",
			value:     "",
			wantErr:   true,
			wantMsg:   "input tree is required",
		},
		{
			name:      "whitespace only",
			fieldName: "taxonomyFile",
			value:     "   ",
			wantErr:   true,
			wantMsg:   "taxonomy file is required",
		},
		{
			name:      "unknown field keeps its name",
			fieldName: "custom",
			value:     "",
			wantErr:   true,
			wantMsg:   "custom is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
				if valErr.Message != tt.wantMsg {
					t.Errorf("expected message %q, got %q", tt.wantMsg, valErr.Message)
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Error("expected ValidationError to match ErrInvalidInput")
				}
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"lower bound", 0, false},
		{"inside", 0.1, false},
		{"upper bound", 1, false},
		{"below", -0.01, true},
		{"above", 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange("maxRDDiff", tt.value, 0, 1)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRange(%g) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNonNegative(t *testing.T) {
	if err := ValidateNonNegative("minChildren", 0); err != nil {
		t.Errorf("unexpected error for zero: %v", err)
	}
	err := ValidateNonNegative("minChildren", -2)
	if err == nil || !strings.Contains(err.Error(), "minimum children must not be negative") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestParseRankFilter(t *testing.T) {
	tests := []struct {
		input   string
		want    Rank
		wantErr bool
	}{
		{"", domain.RankUnknown, false},
		{"phylum", domain.RankPhylum, false},
		{"g", domain.RankGenus, false},
		{"kingdom", domain.RankUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRankFilter(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRankFilter(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRankFilter(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestErrorTypes(t *testing.T) {
	inv := &InvariantError{Taxon: "g__G", Candidates: 2}
	if !errors.Is(inv, ErrInvariant) {
		t.Error("InvariantError should match ErrInvariant")
	}
	if !strings.Contains(inv.Error(), "g__G has 2 placements") {
		t.Errorf("unexpected message %q", inv.Error())
	}

	cause := errors.New("permission denied")
	in := &InputError{Path: "tax.tsv", Err: cause}
	if !errors.Is(in, ErrInvalidInput) || !errors.Is(in, cause) {
		t.Error("InputError should match ErrInvalidInput and unwrap to its cause")
	}
}
