package drugdata

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func TestParseSynonyms(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := writeTempFile(t, "synonyms.json",
			`{"DB00945": ["Aspirin", "ASA"], "DB00682": ["Warfarin"]}`)

		idx, err := ParseSynonyms(path)
		if err != nil {
			t.Fatalf("ParseSynonyms failed: %v", err)
		}

		if got := idx.DrugCount(); got != 2 {
			t.Errorf("DrugCount() = %d, want 2", got)
		}
		if id, ok := idx.Resolve("asa"); !ok || id != "DB00945" {
			t.Errorf("Resolve(asa) = %q, %v", id, ok)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ParseSynonyms(filepath.Join(t.TempDir(), "missing.json")); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeTempFile(t, "bad.json", `{"DB00945": ["Aspirin"`)
		if _, err := ParseSynonyms(path); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})

	t.Run("empty object", func(t *testing.T) {
		path := writeTempFile(t, "empty.json", `{}`)
		if _, err := ParseSynonyms(path); err == nil {
			t.Error("Expected error for empty dataset")
		}
	})
}

func TestParseInteractions(t *testing.T) {
	t.Run("valid file with compound prefix", func(t *testing.T) {
		path := writeTempFile(t, "interactions.csv",
			"Drug1 ID,Drug2 ID,Interaction\n"+
				"Compound::DB00945,Compound::DB00682,(.*) interacts with (.*).\n"+
				"DB00316,DB00682,plain row\n")

		table, err := ParseInteractions(path)
		if err != nil {
			t.Fatalf("ParseInteractions failed: %v", err)
		}

		if got := table.Count(); got != 2 {
			t.Errorf("Count() = %d, want 2", got)
		}

		// Prefix must be stripped before indexing
		if _, ok := table.Lookup("DB00945", "DB00682"); !ok {
			t.Error("Prefixed identifiers should be indexed without the prefix")
		}
	})

	t.Run("column order does not matter", func(t *testing.T) {
		path := writeTempFile(t, "reordered.csv",
			"Interaction,Drug2,Drug1\n"+
				"some description,DB00682,DB00945\n")

		table, err := ParseInteractions(path)
		if err != nil {
			t.Fatalf("ParseInteractions failed: %v", err)
		}
		if desc, ok := table.Lookup("DB00945", "DB00682"); !ok || desc != "some description" {
			t.Errorf("Lookup = %q, %v", desc, ok)
		}
	})

	t.Run("short and empty rows skipped", func(t *testing.T) {
		path := writeTempFile(t, "sparse.csv",
			"drug1,drug2,interaction\n"+
				"DB00945,DB00682,valid\n"+
				"DB00316\n"+
				",DB00682,empty first id\n")

		table, err := ParseInteractions(path)
		if err != nil {
			t.Fatalf("ParseInteractions failed: %v", err)
		}
		if got := table.Count(); got != 1 {
			t.Errorf("Count() = %d, want 1", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ParseInteractions(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("missing columns", func(t *testing.T) {
		path := writeTempFile(t, "badheader.csv", "foo,bar,baz\na,b,c\n")
		if _, err := ParseInteractions(path); err == nil {
			t.Error("Expected error for unrecognized header")
		}
	})

	t.Run("header only", func(t *testing.T) {
		path := writeTempFile(t, "headeronly.csv", "drug1,drug2,interaction\n")
		if _, err := ParseInteractions(path); err == nil {
			t.Error("Expected error when no usable rows exist")
		}
	})
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "interactions.csv"),
		[]byte("drug1,drug2,interaction\nDB00945,DB00682,desc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "drugs_synonyms.json"),
		[]byte(`{"DB00945": ["Aspirin"], "DB00682": ["Warfarin"]}`), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(dir, "interactions.csv", "drugs_synonyms.json")
	index, table, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if index.DrugCount() != 2 || table.Count() != 1 {
		t.Errorf("Loaded %d drugs and %d pairs, want 2 and 1", index.DrugCount(), table.Count())
	}
}
