package voice

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	keywords := DefaultKeywords()

	tests := []struct {
		name           string
		transcript     string
		wantAmount     float64
		wantCategoryID string
		wantErr        error
	}{
		{
			name:           "plain expense",
			transcript:     "spent 20 on groceries",
			wantAmount:     20,
			wantCategoryID: "groceries",
		},
		{
			name:           "decimal amount",
			transcript:     "12.50 for the grocery run",
			wantAmount:     12.5,
			wantCategoryID: "groceries",
		},
		{
			name:           "keyword is case insensitive",
			transcript:     "paid 80 for BILLS today",
			wantAmount:     80,
			wantCategoryID: "utilities",
		},
		{
			name:           "first number wins",
			transcript:     "moved 100 then 250 into savings",
			wantAmount:     100,
			wantCategoryID: "savings",
		},
		{
			name:           "several keywords resolve deterministically",
			transcript:     "50 split between savings and groceries",
			wantAmount:     50,
			wantCategoryID: "groceries",
		},
		{
			name:       "no amount",
			transcript: "bought some groceries",
			wantErr:    ErrNoAmount,
		},
		{
			name:       "no keyword",
			transcript: "spent 30 on mystery things",
			wantErr:    ErrNoCategory,
		},
		{
			name:       "empty transcript",
			transcript: "",
			wantErr:    ErrNoAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.transcript, keywords)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Amount != tt.wantAmount {
				t.Errorf("amount = %v, want %v", got.Amount, tt.wantAmount)
			}
			if got.CategoryID != tt.wantCategoryID {
				t.Errorf("category = %q, want %q", got.CategoryID, tt.wantCategoryID)
			}
		})
	}
}

func TestParseDescriptionCarriesTranscript(t *testing.T) {
	got, err := Parse("spent 20 on groceries", DefaultKeywords())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := `Voice entry: "spent 20 on groceries"`
	if got.Description != want {
		t.Errorf("description = %q, want %q", got.Description, want)
	}
}
