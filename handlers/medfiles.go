package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/interactions-api/llm"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/medfiles"
	"github.com/giygas/interactions-api/metrics"
	"github.com/giygas/interactions-api/storage"
	"github.com/giygas/interactions-api/validation"
)

const extractedPreviewLimit = 500

// respondMedfilesError maps medical-file service errors to HTTP codes
func respondMedfilesError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, "Patient or file not found")
	case errors.Is(err, medfiles.ErrInvalidFileType):
		RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, medfiles.ErrFileTooLarge):
		RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, medfiles.ErrNoFiles):
		RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, medfiles.ErrNoTextContent):
		RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, llm.ErrNotConfigured):
		RespondWithError(w, http.StatusServiceUnavailable, "AI service unavailable: credentials not configured")
	default:
		logging.Error("Medical file operation failed", "error", err)
		RespondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

// RegisterPatientRequest is the patient registration body
type RegisterPatientRequest struct {
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Gender string  `json:"gender"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
}

// RegisterPatient creates a patient record with a generated id
func RegisterPatient(svc *medfiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterPatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.Name == "" {
			RespondWithError(w, http.StatusBadRequest, "Patient name is required")
			return
		}
		if req.Age < 0 || req.Age > 150 {
			RespondWithError(w, http.StatusBadRequest, "Patient age must be between 0 and 150")
			return
		}

		patient, err := svc.RegisterPatient(r.Context(), req.Name, req.Age, req.Gender, req.Email, req.Phone)
		if err != nil {
			respondMedfilesError(w, err)
			return
		}

		RespondWithJSON(w, http.StatusCreated, map[string]any{
			"message": "Patient registered successfully",
			"patient": patient,
		})
	}
}

// ListPatients returns all patients with file counts
func ListPatients(svc *medfiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patients, err := svc.ListPatients(r.Context())
		if err != nil {
			respondMedfilesError(w, err)
			return
		}
		if patients == nil {
			patients = []storage.PatientSummary{}
		}
		RespondWithJSON(w, http.StatusOK, map[string]any{
			"patients":       patients,
			"total_patients": len(patients),
		})
	}
}

// DoctorDashboard aggregates patient counts for the doctor view
func DoctorDashboard(svc *medfiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patients, err := svc.ListPatients(r.Context())
		if err != nil {
			respondMedfilesError(w, err)
			return
		}
		if patients == nil {
			patients = []storage.PatientSummary{}
		}

		withFiles := 0
		for _, p := range patients {
			if p.FileCount > 0 {
				withFiles++
			}
		}

		RespondWithJSON(w, http.StatusOK, map[string]any{
			"patients":            patients,
			"total_patients":      len(patients),
			"patients_with_files": withFiles,
		})
	}
}

// GetPatientProfile returns a patient with its file records
func GetPatientProfile(svc *medfiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientId")
		if err := validation.ValidatePatientID(patientID); err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		profile, err := svc.GetProfile(r.Context(), patientID)
		if err != nil {
			respondMedfilesError(w, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, profile)
	}
}

// UpdateProfileRequest is the profile update body
type UpdateProfileRequest struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// UpdatePatientProfile upserts the editable patient fields
func UpdatePatientProfile(svc *medfiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientId")
		if err := validation.ValidatePatientID(patientID); err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.Name == "" {
			RespondWithError(w, http.StatusBadRequest, "Patient name is required")
			return
		}
		if req.Age < 0 || req.Age > 150 {
			RespondWithError(w, http.StatusBadRequest, "Patient age must be between 0 and 150")
			return
		}

		if err := svc.UpdateProfile(r.Context(), patientID, req.Name, req.Age, req.Gender); err != nil {
			respondMedfilesError(w, err)
			return
		}

		RespondWithJSON(w, http.StatusOK, map[string]string{
			"message":    "Profile updated successfully",
			"patient_id": patientID,
		})
	}
}

// UploadMedicalFile accepts a multipart upload for a patient
func UploadMedicalFile(svc *medfiles.Service, maxUpload int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientId")
		if err := validation.ValidatePatientID(patientID); err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		// One extra byte so oversized uploads are detected instead of
		// silently truncated.
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload+1)
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Could not parse multipart form")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, "Missing file field")
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, "Could not read uploaded file")
			return
		}

		start := time.Now()
		record, err := svc.Upload(r.Context(), patientID, header.Filename, content)
		metrics.ObserveAICall("upload_analysis", start, err)
		if err != nil {
			respondMedfilesError(w, err)
			return
		}

		preview := record.ExtractedText
		if len(preview) > extractedPreviewLimit {
			preview = preview[:extractedPreviewLimit] + "..."
		}

		RespondWithJSON(w, http.StatusOK, map[string]any{
			"message":        "File uploaded successfully",
			"file_id":        record.ID,
			"patient_id":     record.PatientID,
			"filename":       record.Filename,
			"file_size":      record.FileSize,
			"extracted_text": preview,
		})
	}
}

// ListMedicalFiles returns the file records of a patient
func ListMedicalFiles(svc *medfiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientId")
		if err := validation.ValidatePatientID(patientID); err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		files, err := svc.ListFiles(r.Context(), patientID)
		if err != nil {
			respondMedfilesError(w, err)
			return
		}

		RespondWithJSON(w, http.StatusOK, map[string]any{
			"patient_id":  patientID,
			"files":       files,
			"total_files": len(files),
		})
	}
}

// SummarizeRequest selects the files and prompt variant for a summary
type SummarizeRequest struct {
	SummaryType string   `json:"summary_type"`
	FileIDs     []string `json:"file_ids"`
}

// SummarizeFiles generates an AI summary over a patient's files
func SummarizeFiles(svc *medfiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientId")
		if err := validation.ValidatePatientID(patientID); err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		// The body is optional; an empty one means a comprehensive
		// summary over all files.
		var req SummarizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		start := time.Now()
		result, err := svc.Summarize(r.Context(), patientID, req.SummaryType, req.FileIDs)
		metrics.ObserveAICall("summary", start, err)
		if err != nil {
			respondMedfilesError(w, err)
			return
		}

		RespondWithJSON(w, http.StatusOK, result)
	}
}

// ChatRequest carries a doctor's question about a patient
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatAboutPatient answers a question grounded on a patient's files
func ChatAboutPatient(svc *medfiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientId")
		if err := validation.ValidatePatientID(patientID); err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.Question == "" {
			RespondWithError(w, http.StatusBadRequest, "Question is required")
			return
		}

		start := time.Now()
		result, err := svc.Chat(r.Context(), patientID, req.Question)
		metrics.ObserveAICall("chat", start, err)
		if err != nil {
			respondMedfilesError(w, err)
			return
		}

		RespondWithJSON(w, http.StatusOK, result)
	}
}

// DeleteMedicalFile removes a file record and its stored bytes
func DeleteMedicalFile(svc *medfiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID := chi.URLParam(r, "fileId")

		if err := svc.DeleteFile(r.Context(), fileID); err != nil {
			respondMedfilesError(w, err)
			return
		}

		RespondWithJSON(w, http.StatusOK, map[string]string{
			"message": "File deleted successfully",
			"file_id": fileID,
		})
	}
}
