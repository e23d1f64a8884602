package areacodes

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_BundledDataset(t *testing.T) {
	s, err := ValidateDataset(t.Context(), New())
	if err != nil {
		t.Fatalf("ValidateDataset() error = %v", err)
	}
	if s.Records < 40 {
		t.Errorf("Records = %d, want >= 40", s.Records)
	}
	if len(s.Countries) < 8 {
		t.Errorf("Countries = %v, want >= 8 countries", s.Countries)
	}
}

func TestValidate_Violations(t *testing.T) {
	good := AreaCode{Code: "212", Country: "US", Region: "New York", City: "New York", E164: "1212"}

	tests := []struct {
		name    string
		codes   []AreaCode
		wantErr string
	}{
		{
			name:  "valid",
			codes: []AreaCode{good, {Code: "212", Country: "BY", Region: "Vitebsk Region", E164: "375212"}},
		},
		{
			name:    "duplicate e164",
			codes:   []AreaCode{good, good},
			wantErr: "duplicates record 0",
		},
		{
			name:    "non-numeric e164",
			codes:   []AreaCode{{Code: "212", Country: "US", Region: "New York", E164: "+1212"}},
			wantErr: "is not numeric",
		},
		{
			name:    "e164 does not end with code",
			codes:   []AreaCode{{Code: "213", Country: "US", Region: "California", E164: "1212"}},
			wantErr: "does not end with code",
		},
		{
			name:    "missing region",
			codes:   []AreaCode{{Code: "212", Country: "US", E164: "1212"}},
			wantErr: "missing region",
		},
		{
			name:    "unknown country",
			codes:   []AreaCode{{Code: "212", Country: "XX", Region: "Nowhere", E164: "991212"}},
			wantErr: "unknown country",
		},
		{
			name:  "legacy alias",
			codes: []AreaCode{{Code: "20", Country: "UK", Region: "England", City: "London", E164: "4420"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.codes)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDataset_LoadError(t *testing.T) {
	c := New(WithFs(newFixtureFs(t, map[string]string{"bad.json": "{"}), fixtureDir))

	_, err := ValidateDataset(t.Context(), c)
	if !errors.Is(err, ErrDecodingFailed) {
		t.Errorf("ValidateDataset() error = %v, want ErrDecodingFailed", err)
	}
}
