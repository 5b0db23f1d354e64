package medfiles

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/giygas/interactions-api/llm"
	"github.com/giygas/interactions-api/storage"
)

// mockStore is an in-memory Store implementation
type mockStore struct {
	patients map[string]*storage.Patient
	files    map[string]*storage.MedicalFile
	failWith error
}

func newMockStore() *mockStore {
	return &mockStore{
		patients: make(map[string]*storage.Patient),
		files:    make(map[string]*storage.MedicalFile),
	}
}

func (m *mockStore) CreatePatient(ctx context.Context, p *storage.Patient) error {
	if m.failWith != nil {
		return m.failWith
	}
	cp := *p
	cp.CreatedAt = time.Now()
	cp.LastActivity = cp.CreatedAt
	m.patients[p.PatientID] = &cp
	return nil
}

func (m *mockStore) GetPatient(ctx context.Context, patientID string) (*storage.Patient, error) {
	if p, ok := m.patients[patientID]; ok {
		return p, nil
	}
	return nil, storage.ErrNotFound
}

func (m *mockStore) PatientExists(ctx context.Context, patientID string) (bool, error) {
	_, ok := m.patients[patientID]
	return ok, nil
}

func (m *mockStore) ListPatients(ctx context.Context) ([]storage.PatientSummary, error) {
	var out []storage.PatientSummary
	for _, p := range m.patients {
		s := storage.PatientSummary{Patient: *p}
		for _, f := range m.files {
			if f.PatientID == p.PatientID {
				s.FileCount++
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStore) UpdateProfile(ctx context.Context, patientID, name string, age int, gender string) error {
	p, ok := m.patients[patientID]
	if !ok {
		p = &storage.Patient{PatientID: patientID}
		m.patients[patientID] = p
	}
	p.Name, p.Age, p.Gender = name, age, gender
	return nil
}

func (m *mockStore) TouchPatient(ctx context.Context, patientID string) error {
	if p, ok := m.patients[patientID]; ok {
		p.LastActivity = time.Now()
	}
	return nil
}

func (m *mockStore) InsertFile(ctx context.Context, f *storage.MedicalFile) error {
	if m.failWith != nil {
		return m.failWith
	}
	cp := *f
	m.files[f.ID] = &cp
	return nil
}

func (m *mockStore) GetFile(ctx context.Context, fileID string) (*storage.MedicalFile, error) {
	if f, ok := m.files[fileID]; ok {
		return f, nil
	}
	return nil, storage.ErrNotFound
}

func (m *mockStore) ListFiles(ctx context.Context, patientID string) ([]storage.MedicalFile, error) {
	var out []storage.MedicalFile
	for _, f := range m.files {
		if f.PatientID == patientID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *mockStore) DeleteFile(ctx context.Context, fileID string) error {
	if _, ok := m.files[fileID]; !ok {
		return storage.ErrNotFound
	}
	delete(m.files, fileID)
	return nil
}

// stubClient returns a canned reply or error
type stubClient struct {
	reply string
	err   error
}

func (s *stubClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.reply, s.err
}

func newTestService(t *testing.T, store Store, client llm.Client) *Service {
	t.Helper()
	svc, err := NewService(store, client, t.TempDir(), 10*1024*1024)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func TestRegisterPatient(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &stubClient{err: llm.ErrNotConfigured})

	email := "jane@example.com"
	patient, err := svc.RegisterPatient(context.Background(), "Jane Doe", 45, "female", &email, nil)
	if err != nil {
		t.Fatalf("RegisterPatient failed: %v", err)
	}

	if !strings.HasPrefix(patient.PatientID, "P") || len(patient.PatientID) != 9 {
		t.Errorf("PatientID = %q, want P followed by 8 characters", patient.PatientID)
	}
	if patient.PatientID != strings.ToUpper(patient.PatientID) {
		t.Errorf("PatientID should be upper case, got %q", patient.PatientID)
	}
	if patient.Name != "Jane Doe" || patient.Age != 45 {
		t.Errorf("Stored patient = %+v", patient)
	}
	if patient.Email == nil || *patient.Email != email {
		t.Errorf("Email not persisted: %+v", patient.Email)
	}
}

func TestRegisterPatientUniqueIDs(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &stubClient{err: llm.ErrNotConfigured})

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		p, err := svc.RegisterPatient(context.Background(), "Patient", 30, "other", nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if seen[p.PatientID] {
			t.Fatalf("Duplicate patient id %q", p.PatientID)
		}
		seen[p.PatientID] = true
	}
}

func TestUploadStoresFileAndRecord(t *testing.T) {
	store := newMockStore()
	dir := t.TempDir()
	svc, err := NewService(store, &stubClient{reply: `{"summary": "Routine visit", "key_findings": ["BP normal"]}`}, dir, 10*1024*1024)
	if err != nil {
		t.Fatal(err)
	}

	content := []byte("Patient presents with mild hypertension. BP 140/90.")
	record, err := svc.Upload(context.Background(), "PABC12345", "notes.txt", content)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if record.FileType != ".txt" || record.FileSize != int64(len(content)) {
		t.Errorf("Record metadata = %+v", record)
	}
	if !strings.Contains(record.ExtractedText, "hypertension") {
		t.Errorf("ExtractedText = %q", record.ExtractedText)
	}
	if !strings.Contains(record.AISummary, "Routine visit") {
		t.Errorf("AISummary = %q", record.AISummary)
	}

	// Bytes land on disk under the uuid-prefixed name
	matches, _ := filepath.Glob(filepath.Join(dir, "*_notes.txt"))
	if len(matches) != 1 {
		t.Fatalf("Expected one stored file, found %v", matches)
	}
	stored, err := os.ReadFile(matches[0])
	if err != nil || string(stored) != string(content) {
		t.Errorf("Stored bytes differ from upload")
	}

	// Unknown patients are auto-created
	if _, err := store.GetPatient(context.Background(), "PABC12345"); err != nil {
		t.Errorf("Patient should be auto-created on upload: %v", err)
	}
}

func TestUploadValidation(t *testing.T) {
	store := newMockStore()
	svc, err := NewService(store, &stubClient{err: llm.ErrNotConfigured}, t.TempDir(), 100)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("disallowed extension", func(t *testing.T) {
		_, err := svc.Upload(context.Background(), "P1", "malware.exe", []byte("x"))
		if !errors.Is(err, ErrInvalidFileType) {
			t.Errorf("Expected ErrInvalidFileType, got %v", err)
		}
	})

	t.Run("oversized file", func(t *testing.T) {
		_, err := svc.Upload(context.Background(), "P1", "big.txt", make([]byte, 200))
		if !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("Expected ErrFileTooLarge, got %v", err)
		}
	})
}

func TestUploadSucceedsWithoutAI(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &stubClient{err: llm.ErrNotConfigured})

	record, err := svc.Upload(context.Background(), "P1", "notes.txt", []byte("some notes"))
	if err != nil {
		t.Fatalf("Upload should succeed without AI: %v", err)
	}
	if record.AISummary != "" {
		t.Errorf("AISummary should be empty without credentials, got %q", record.AISummary)
	}
}

func TestUploadCleansUpOnInsertFailure(t *testing.T) {
	store := newMockStore()
	store.failWith = errors.New("db down")
	dir := t.TempDir()
	svc, err := NewService(store, &stubClient{err: llm.ErrNotConfigured}, dir, 10*1024*1024)
	if err != nil {
		t.Fatal(err)
	}

	// Patient creation fails first, so seed one to reach the insert
	store.failWith = nil
	if err := store.CreatePatient(context.Background(), &storage.Patient{PatientID: "P1"}); err != nil {
		t.Fatal(err)
	}
	store.failWith = errors.New("db down")

	if _, err := svc.Upload(context.Background(), "P1", "notes.txt", []byte("content")); err == nil {
		t.Fatal("Expected insert failure to propagate")
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*_notes.txt"))
	if len(matches) != 0 {
		t.Errorf("Orphaned file should be removed, found %v", matches)
	}
}

func TestGetProfile(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &stubClient{err: llm.ErrNotConfigured})

	if _, err := svc.GetProfile(context.Background(), "P404"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	store.CreatePatient(context.Background(), &storage.Patient{PatientID: "P1", Name: "Jane"})
	profile, err := svc.GetProfile(context.Background(), "P1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.Name != "Jane" {
		t.Errorf("Profile = %+v", profile)
	}
	if profile.MedicalFiles == nil {
		t.Error("MedicalFiles should be an empty slice, not nil")
	}
}

func TestDeleteFile(t *testing.T) {
	store := newMockStore()
	dir := t.TempDir()
	svc, err := NewService(store, &stubClient{err: llm.ErrNotConfigured}, dir, 10*1024*1024)
	if err != nil {
		t.Fatal(err)
	}

	record, err := svc.Upload(context.Background(), "P1", "notes.txt", []byte("content"))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteFile(context.Background(), record.ID); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}

	if _, err := store.GetFile(context.Background(), record.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Error("Record should be gone")
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*_notes.txt"))
	if len(matches) != 0 {
		t.Errorf("Disk file should be removed, found %v", matches)
	}

	if err := svc.DeleteFile(context.Background(), record.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Deleting a missing file should return ErrNotFound, got %v", err)
	}
}
