package drugdata

import "path/filepath"

// Loader loads both datasets from a directory on disk.
type Loader struct {
	interactionsPath string
	synonymsPath     string
}

// NewLoader creates a loader rooted at dataDir.
func NewLoader(dataDir, interactionsFile, synonymsFile string) *Loader {
	return &Loader{
		interactionsPath: filepath.Join(dataDir, interactionsFile),
		synonymsPath:     filepath.Join(dataDir, synonymsFile),
	}
}

// Load parses both datasets and returns the built lookup structures.
// Either file missing or malformed fails the whole load; the service
// must not serve without data.
func (l *Loader) Load() (*SynonymIndex, *InteractionTable, error) {
	index, err := ParseSynonyms(l.synonymsPath)
	if err != nil {
		return nil, nil, err
	}

	table, err := ParseInteractions(l.interactionsPath)
	if err != nil {
		return nil, nil, err
	}

	return index, table, nil
}
