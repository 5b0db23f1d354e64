package storage

import (
	"strings"
	"testing"
)

func TestSchemaEmbedded(t *testing.T) {
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS patients",
		"CREATE TABLE IF NOT EXISTS medical_files",
		"REFERENCES patients",
	} {
		if !strings.Contains(schemaSQL, want) {
			t.Errorf("Schema should contain %q", want)
		}
	}
}
