package validation

import (
	"strings"
	"testing"

	"github.com/giygas/interactions-api/drugdata"
)

func TestValidateDrugName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple name", "Aspirin", false},
		{"multi-word name", "Acetylsalicylic acid", false},
		{"accented name", "Déxtrose", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("a", MaxDrugNameLength+1), true},
		{"at the limit", strings.Repeat("a", MaxDrugNameLength), false},
		{"invalid utf8", string([]byte{0xff, 0xfe}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDrugName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDrugName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePatientID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"generated shape", "PABC12345", false},
		{"lowercase allowed", "pabc12345", false},
		{"with dash", "P-123", false},
		{"empty", "", true},
		{"with space", "P ABC", true},
		{"with slash", "P/123", true},
		{"too long", strings.Repeat("A", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePatientID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePatientID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestReportDataQuality(t *testing.T) {
	index := drugdata.NewSynonymIndex(map[string][]string{
		"DB1": {"Aspirin"},
		"DB2": {"Warfarin"},
	})
	table := drugdata.NewInteractionTable([]drugdata.InteractionRecord{
		{Drug1ID: "DB1", Drug2ID: "DB2", Description: "known pair"},
		{Drug1ID: "DB2", Drug2ID: "DB1", Description: "duplicate"},
		{Drug1ID: "DB1", Drug2ID: "DB1", Description: "self pair"},
		{Drug1ID: "DB1", Drug2ID: "DB9", Description: "unknown id"},
	})

	report := ReportDataQuality(index, table)

	if report.TotalDrugs != 2 {
		t.Errorf("TotalDrugs = %d, want 2", report.TotalDrugs)
	}
	if report.TotalPairs != 3 {
		t.Errorf("TotalPairs = %d, want 3", report.TotalPairs)
	}
	if report.DuplicatePairRows != 1 {
		t.Errorf("DuplicatePairRows = %d, want 1", report.DuplicatePairRows)
	}
	if report.SelfPairRows != 1 {
		t.Errorf("SelfPairRows = %d, want 1", report.SelfPairRows)
	}
	if report.UnknownIDs != 1 {
		t.Errorf("UnknownIDs = %d, want 1", report.UnknownIDs)
	}
}
