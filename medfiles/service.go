package medfiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/giygas/interactions-api/llm"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/storage"
)

var (
	// ErrInvalidFileType is returned for uploads with a disallowed extension.
	ErrInvalidFileType = errors.New("file type not allowed")
	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrNoFiles is returned when a summary is requested but the patient has no matching files.
	ErrNoFiles = errors.New("no files found to summarize")
	// ErrNoTextContent is returned when the selected files hold no extractable text.
	ErrNoTextContent = errors.New("no text content found in files")
)

// Store is the persistence surface the service needs. Implemented by
// *storage.Repository.
type Store interface {
	CreatePatient(ctx context.Context, p *storage.Patient) error
	GetPatient(ctx context.Context, patientID string) (*storage.Patient, error)
	PatientExists(ctx context.Context, patientID string) (bool, error)
	ListPatients(ctx context.Context) ([]storage.PatientSummary, error)
	UpdateProfile(ctx context.Context, patientID, name string, age int, gender string) error
	TouchPatient(ctx context.Context, patientID string) error
	InsertFile(ctx context.Context, f *storage.MedicalFile) error
	GetFile(ctx context.Context, fileID string) (*storage.MedicalFile, error)
	ListFiles(ctx context.Context, patientID string) ([]storage.MedicalFile, error)
	DeleteFile(ctx context.Context, fileID string) error
}

var _ Store = (*storage.Repository)(nil)

// Service orchestrates uploads, summaries and chat for medical files.
type Service struct {
	store      Store
	client     llm.Client
	storageDir string
	maxUpload  int64
}

// NewService creates a medical file service. The storage directory is
// created if it does not exist.
func NewService(store Store, client llm.Client, storageDir string, maxUpload int64) (*Service, error) {
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", storageDir, err)
	}
	return &Service{
		store:      store,
		client:     client,
		storageDir: storageDir,
		maxUpload:  maxUpload,
	}, nil
}

// RegisterPatient creates a new patient and returns the stored record.
func (s *Service) RegisterPatient(ctx context.Context, name string, age int, gender string, email, phone *string) (*storage.Patient, error) {
	patientID := newPatientID()

	// Regenerate on the unlikely id collision
	for {
		exists, err := s.store.PatientExists(ctx, patientID)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
		patientID = newPatientID()
	}

	patient := &storage.Patient{
		PatientID: patientID,
		Name:      name,
		Age:       age,
		Gender:    gender,
		Email:     email,
		Phone:     phone,
	}
	if err := s.store.CreatePatient(ctx, patient); err != nil {
		return nil, err
	}

	logging.Info("Patient registered", "patient_id", patientID)
	return s.store.GetPatient(ctx, patientID)
}

func newPatientID() string {
	return "P" + strings.ToUpper(uuid.NewString()[:8])
}

// ListPatients returns all patients with file counts.
func (s *Service) ListPatients(ctx context.Context) ([]storage.PatientSummary, error) {
	return s.store.ListPatients(ctx)
}

// PatientProfile is a patient record combined with its files.
type PatientProfile struct {
	storage.Patient
	MedicalFiles []storage.MedicalFile `json:"medical_files"`
}

// GetProfile returns a patient with its file records.
func (s *Service) GetProfile(ctx context.Context, patientID string) (*PatientProfile, error) {
	patient, err := s.store.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	files, err := s.store.ListFiles(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []storage.MedicalFile{}
	}
	return &PatientProfile{Patient: *patient, MedicalFiles: files}, nil
}

// UpdateProfile updates the editable patient fields.
func (s *Service) UpdateProfile(ctx context.Context, patientID, name string, age int, gender string) error {
	return s.store.UpdateProfile(ctx, patientID, name, age, gender)
}

// ListFiles returns the file records of a patient.
func (s *Service) ListFiles(ctx context.Context, patientID string) ([]storage.MedicalFile, error) {
	files, err := s.store.ListFiles(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []storage.MedicalFile{}
	}
	return files, nil
}

// fileAnalysis is the JSON shape the model is asked for when
// summarizing a single uploaded document.
type fileAnalysis struct {
	Summary         string   `json:"summary"`
	KeyFindings     []string `json:"key_findings"`
	Recommendations []string `json:"recommendations"`
}

// Upload validates and stores a medical file: bytes on disk, metadata,
// extracted text and a best-effort AI analysis in the repository.
func (s *Service) Upload(ctx context.Context, patientID, filename string, content []byte) (*storage.MedicalFile, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, ext)
	}
	if int64(len(content)) > s.maxUpload {
		return nil, fmt.Errorf("%w: maximum size is %d bytes", ErrFileTooLarge, s.maxUpload)
	}

	fileID := uuid.NewString()
	diskPath := s.filePath(fileID, filename)
	if err := os.WriteFile(diskPath, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	extracted := ExtractText(content, filename)

	// Per-file AI analysis is best effort; upload succeeds without it.
	summaryJSON := ""
	var analysis fileAnalysis
	raw, err := llm.AskJSON(ctx, s.client, documentSystemPrompt, buildFilePrompt(extracted), &analysis)
	switch {
	case err == nil:
		if data, marshalErr := json.Marshal(analysis); marshalErr == nil {
			summaryJSON = string(data)
		}
	case errors.Is(err, llm.ErrNotConfigured):
		logging.Debug("Skipping upload analysis, model not configured")
	case raw != "":
		// Model replied but not with valid JSON; keep the raw text.
		if data, marshalErr := json.Marshal(fileAnalysis{Summary: llm.ExtractJSON(raw)}); marshalErr == nil {
			summaryJSON = string(data)
		}
	default:
		logging.Warn("Upload analysis failed", "file", filename, "error", err)
	}

	// Auto-create the patient so uploads for fresh ids succeed;
	// registration before upload is optional.
	exists, err := s.store.PatientExists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := s.store.CreatePatient(ctx, &storage.Patient{
			PatientID: patientID,
			Name:      "Patient " + patientID,
			Gender:    "unknown",
		}); err != nil {
			return nil, err
		}
	}

	record := &storage.MedicalFile{
		ID:            fileID,
		PatientID:     patientID,
		Filename:      filename,
		FileType:      ext,
		FileSize:      int64(len(content)),
		UploadDate:    time.Now(),
		ExtractedText: extracted,
		AISummary:     summaryJSON,
	}
	if err := s.store.InsertFile(ctx, record); err != nil {
		// Keep disk and database consistent
		if rmErr := os.Remove(diskPath); rmErr != nil {
			logging.Warn("Failed to remove orphaned upload", "path", diskPath, "error", rmErr)
		}
		return nil, err
	}

	if err := s.store.TouchPatient(ctx, patientID); err != nil {
		logging.Warn("Failed to update patient activity", "patient_id", patientID, "error", err)
	}

	logging.Info("Medical file uploaded",
		"patient_id", patientID,
		"file_id", fileID,
		"filename", filename,
		"size", len(content))
	return record, nil
}

// DeleteFile removes a file record and its bytes on disk.
func (s *Service) DeleteFile(ctx context.Context, fileID string) error {
	record, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteFile(ctx, fileID); err != nil {
		return err
	}

	// Disk removal is best effort; the record is already gone.
	if err := os.Remove(s.filePath(fileID, record.Filename)); err != nil && !os.IsNotExist(err) {
		logging.Warn("Failed to remove file from disk", "file_id", fileID, "error", err)
	}
	return nil
}

func (s *Service) filePath(fileID, filename string) string {
	// The original name is kept for operator convenience; the uuid
	// prefix guarantees uniqueness.
	return filepath.Join(s.storageDir, fileID+"_"+filepath.Base(filename))
}
