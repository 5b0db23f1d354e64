// Package storage persists patient records and medical file metadata
// in Postgres. It is the single source of truth for patient state;
// nothing is kept in process-wide maps.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when the requested patient or file does not exist.
var ErrNotFound = errors.New("record not found")

// Patient is a registered patient row.
type Patient struct {
	PatientID    string    `json:"patient_id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender"`
	Email        *string   `json:"email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// PatientSummary is a patient row with its file count, used by listings.
type PatientSummary struct {
	Patient
	FileCount int `json:"file_count"`
}

// MedicalFile is the persisted metadata and extracted text of an upload.
// The raw bytes live on disk keyed by ID.
type MedicalFile struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patient_id"`
	Filename      string    `json:"filename"`
	FileType      string    `json:"file_type"`
	FileSize      int64     `json:"file_size"`
	UploadDate    time.Time `json:"upload_date"`
	ExtractedText string    `json:"extracted_text"`
	AISummary     string    `json:"ai_summary,omitempty"`
}

// Repository wraps database operations for patients and medical files.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a Repository from an existing sql.DB.
// The caller is responsible for managing the connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// CreatePatient inserts a new patient row.
func (r *Repository) CreatePatient(ctx context.Context, p *Patient) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO patients (patient_id, name, age, gender, email, phone)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		p.PatientID, p.Name, p.Age, p.Gender, p.Email, p.Phone,
	)
	return err
}

// GetPatient retrieves a patient by id.
func (r *Repository) GetPatient(ctx context.Context, patientID string) (*Patient, error) {
	var p Patient
	err := r.DB.QueryRowContext(ctx,
		`SELECT patient_id, name, age, gender, email, phone, created_at, last_activity
         FROM patients WHERE patient_id = $1`,
		patientID,
	).Scan(&p.PatientID, &p.Name, &p.Age, &p.Gender, &p.Email, &p.Phone, &p.CreatedAt, &p.LastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PatientExists reports whether a patient id is registered.
func (r *Repository) PatientExists(ctx context.Context, patientID string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM patients WHERE patient_id = $1`, patientID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListPatients returns all patients with their file counts, most
// recently active first.
func (r *Repository) ListPatients(ctx context.Context) ([]PatientSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.patient_id, p.name, p.age, p.gender, p.email, p.phone,
                p.created_at, p.last_activity, COUNT(f.id)
         FROM patients p
         LEFT JOIN medical_files f ON f.patient_id = p.patient_id
         GROUP BY p.patient_id
         ORDER BY p.last_activity DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []PatientSummary
	for rows.Next() {
		var p PatientSummary
		if err := rows.Scan(&p.PatientID, &p.Name, &p.Age, &p.Gender, &p.Email, &p.Phone,
			&p.CreatedAt, &p.LastActivity, &p.FileCount); err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// UpdateProfile updates the editable profile fields and touches the
// activity timestamp. Missing patients are created; profile updates
// are upserts.
func (r *Repository) UpdateProfile(ctx context.Context, patientID, name string, age int, gender string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO patients (patient_id, name, age, gender)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (patient_id) DO UPDATE
         SET name = EXCLUDED.name, age = EXCLUDED.age, gender = EXCLUDED.gender,
             last_activity = NOW()`,
		patientID, name, age, gender,
	)
	return err
}

// TouchPatient updates the last-activity timestamp.
func (r *Repository) TouchPatient(ctx context.Context, patientID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE patients SET last_activity = NOW() WHERE patient_id = $1`, patientID)
	return err
}

// InsertFile stores the metadata and extracted text of an upload.
func (r *Repository) InsertFile(ctx context.Context, f *MedicalFile) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO medical_files (id, patient_id, filename, file_type, file_size, upload_date, extracted_text, ai_summary)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.PatientID, f.Filename, f.FileType, f.FileSize, f.UploadDate, f.ExtractedText, f.AISummary,
	)
	return err
}

// GetFile retrieves a medical file record by id.
func (r *Repository) GetFile(ctx context.Context, fileID string) (*MedicalFile, error) {
	var f MedicalFile
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, patient_id, filename, file_type, file_size, upload_date, extracted_text, ai_summary
         FROM medical_files WHERE id = $1`,
		fileID,
	).Scan(&f.ID, &f.PatientID, &f.Filename, &f.FileType, &f.FileSize, &f.UploadDate, &f.ExtractedText, &f.AISummary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFiles returns the files of a patient, newest first.
func (r *Repository) ListFiles(ctx context.Context, patientID string) ([]MedicalFile, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, patient_id, filename, file_type, file_size, upload_date, extracted_text, ai_summary
         FROM medical_files
         WHERE patient_id = $1
         ORDER BY upload_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []MedicalFile
	for rows.Next() {
		var f MedicalFile
		if err := rows.Scan(&f.ID, &f.PatientID, &f.Filename, &f.FileType, &f.FileSize,
			&f.UploadDate, &f.ExtractedText, &f.AISummary); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteFile removes a file record.
func (r *Repository) DeleteFile(ctx context.Context, fileID string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM medical_files WHERE id = $1`, fileID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
