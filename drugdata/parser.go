package drugdata

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/giygas/interactions-api/logging"
)

// compoundPrefix is carried by identifiers in the raw interaction CSV
// and must be stripped before indexing.
const compoundPrefix = "Compound::"

// ParseSynonyms loads the synonym dataset: a JSON object mapping each
// canonical identifier to its list of names, first entry primary.
func ParseSynonyms(path string) (*SynonymIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonyms file: %w", err)
	}

	var synonyms map[string][]string
	if err := json.Unmarshal(raw, &synonyms); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms file %s: %w", path, err)
	}
	if len(synonyms) == 0 {
		return nil, fmt.Errorf("synonyms file %s contains no entries", path)
	}

	idx := NewSynonymIndex(synonyms)
	logging.Info("Synonyms dataset loaded",
		"file", path,
		"drugs", idx.DrugCount(),
		"names", idx.SynonymCount())
	return idx, nil
}

// ParseInteractions loads the interaction dataset: a CSV with two
// identifier columns and a description column. Header names are matched
// case-insensitively so the column order in the source file does not
// matter.
func ParseInteractions(path string) (*InteractionTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open interactions file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close interactions file", "error", err)
		}
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read interactions header: %w", err)
	}

	drug1Col, drug2Col, descCol := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "drug1", "drug1 id":
			drug1Col = i
		case "drug2", "drug2 id":
			drug2Col = i
		case "interaction", "description":
			descCol = i
		}
	}
	if drug1Col < 0 || drug2Col < 0 || descCol < 0 {
		return nil, fmt.Errorf("interactions file %s is missing required columns, got header: %v", path, header)
	}

	var records []InteractionRecord
	skippedShortRows := 0
	skippedEmptyIDs := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read interactions row: %w", err)
		}

		if len(row) <= drug1Col || len(row) <= drug2Col || len(row) <= descCol {
			skippedShortRows++
			continue
		}

		id1 := strings.TrimPrefix(strings.TrimSpace(row[drug1Col]), compoundPrefix)
		id2 := strings.TrimPrefix(strings.TrimSpace(row[drug2Col]), compoundPrefix)
		if id1 == "" || id2 == "" {
			skippedEmptyIDs++
			continue
		}

		records = append(records, InteractionRecord{
			Drug1ID:     id1,
			Drug2ID:     id2,
			Description: row[descCol],
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("interactions file %s contains no usable rows", path)
	}

	if skippedShortRows > 0 || skippedEmptyIDs > 0 {
		logging.Info("Interactions dataset skip statistics",
			"short_rows", skippedShortRows,
			"empty_ids", skippedEmptyIDs,
			"records_parsed", len(records))
	}

	table := NewInteractionTable(records)
	logging.Info("Interactions dataset loaded",
		"file", path,
		"rows", table.RowCount(),
		"pairs", table.Count())
	return table, nil
}
