// Package validation provides input validation and dataset quality
// reporting for the interactions API.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/giygas/interactions-api/drugdata"
	"github.com/giygas/interactions-api/logging"
)

// MaxDrugNameLength bounds user-supplied drug names. The longest names
// in the synonym dataset are well under this.
const MaxDrugNameLength = 200

// DataQualityReport summarizes issues found in the loaded datasets.
type DataQualityReport struct {
	DuplicatePairRows int // Source rows dropped because their pair was already indexed
	SelfPairRows      int // Rows pairing an identifier with itself
	UnknownIDs        int // Identifiers in the interaction table absent from the synonym index
	TotalPairs        int
	TotalDrugs        int
}

// ValidateDrugName checks a user-supplied drug name before resolution.
func ValidateDrugName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("drug name cannot be empty")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("drug name contains invalid characters")
	}
	if utf8.RuneCountInString(name) > MaxDrugNameLength {
		return fmt.Errorf("drug name is too long (max %d characters)", MaxDrugNameLength)
	}
	return nil
}

// ValidatePatientID checks the shape of a patient identifier as
// generated at registration (P followed by a uuid fragment).
func ValidatePatientID(id string) error {
	if id == "" {
		return fmt.Errorf("patient id cannot be empty")
	}
	if len(id) > 64 {
		return fmt.Errorf("patient id is too long")
	}
	for _, r := range id {
		if !(r >= 'A' && r <= 'Z') && !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '-' {
			return fmt.Errorf("patient id contains invalid character %q", r)
		}
	}
	return nil
}

// ReportDataQuality cross-checks the loaded datasets and returns a
// summary of the issues found. It never fails the load; the findings
// are informational.
func ReportDataQuality(index *drugdata.SynonymIndex, table *drugdata.InteractionTable) *DataQualityReport {
	report := &DataQualityReport{
		DuplicatePairRows: table.RowCount() - table.Count(),
		SelfPairRows:      table.SelfPairCount(),
		TotalPairs:        table.Count(),
		TotalDrugs:        index.DrugCount(),
	}

	for _, id := range table.IDs() {
		if index.PrimaryName(id) == id {
			// No display name registered: the id never appears in the
			// synonym dataset, so it is unreachable by name resolution.
			report.UnknownIDs++
		}
	}

	return report
}

// LogDataQuality writes the quality report through the shared logger.
func LogDataQuality(report *DataQualityReport) {
	logging.Info("Dataset quality report",
		"total_drugs", report.TotalDrugs,
		"total_pairs", report.TotalPairs,
		"duplicate_pair_rows", report.DuplicatePairRows,
		"self_pair_rows", report.SelfPairRows,
		"unknown_ids", report.UnknownIDs)
}
