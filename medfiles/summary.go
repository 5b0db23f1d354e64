package medfiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/giygas/interactions-api/llm"
	"github.com/giygas/interactions-api/storage"
)

const documentSystemPrompt = "You are a medical AI assistant. " +
	"Analyze medical documents factually and respond only with the requested JSON object."

const chatSystemPrompt = "You are an AI medical assistant helping a doctor understand a patient's " +
	"medical records. Answer factually from the records provided, say clearly when the records " +
	"cannot answer the question, and note that your analysis is not a substitute for professional " +
	"medical judgment."

// SummaryResult is the aggregated AI summary over a patient's files.
type SummaryResult struct {
	Summary         string   `json:"summary"`
	FilesProcessed  []string `json:"files_processed"`
	KeyFindings     []string `json:"key_findings"`
	Recommendations []string `json:"recommendations"`
}

// ChatResult is an answer to a doctor's question about a patient.
type ChatResult struct {
	Response    string `json:"response"`
	ContextUsed string `json:"context_used"`
}

// Summarize generates an AI summary over a patient's files. When
// fileIDs is empty all files are used. summaryType selects the prompt
// variant: comprehensive (default), brief or medications.
func (s *Service) Summarize(ctx context.Context, patientID, summaryType string, fileIDs []string) (*SummaryResult, error) {
	if _, err := s.store.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}

	files, err := s.store.ListFiles(ctx, patientID)
	if err != nil {
		return nil, err
	}

	selected := selectFiles(files, fileIDs)
	if len(selected) == 0 {
		return nil, ErrNoFiles
	}

	combined, processed := combineTexts(selected)
	if strings.TrimSpace(combined) == "" {
		return nil, ErrNoTextContent
	}

	var analysis fileAnalysis
	raw, err := llm.AskJSON(ctx, s.client, documentSystemPrompt,
		buildSummaryPrompt(patientID, summaryType, combined), &analysis)
	if err != nil {
		if raw == "" {
			return nil, fmt.Errorf("summary generation failed: %w", err)
		}
		// The model answered but not in the requested shape; wrap the
		// raw text rather than failing the request.
		return &SummaryResult{
			Summary:         llm.ExtractJSON(raw),
			FilesProcessed:  processed,
			KeyFindings:     []string{"AI analysis completed"},
			Recommendations: []string{"Please review the summary above"},
		}, nil
	}

	result := &SummaryResult{
		Summary:         analysis.Summary,
		FilesProcessed:  processed,
		KeyFindings:     analysis.KeyFindings,
		Recommendations: analysis.Recommendations,
	}
	if result.KeyFindings == nil {
		result.KeyFindings = []string{}
	}
	if result.Recommendations == nil {
		result.Recommendations = []string{}
	}
	return result, nil
}

// Chat answers a free-text question about a patient using the extracted
// texts of their files as grounding context.
func (s *Service) Chat(ctx context.Context, patientID, question string) (*ChatResult, error) {
	patient, err := s.store.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	files, err := s.store.ListFiles(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return &ChatResult{
			Response: fmt.Sprintf("There are no medical files for patient %s yet. "+
				"Upload medical documents first to enable chat.", patientID),
			ContextUsed: "No files available",
		}, nil
	}

	combined, used := combineTexts(files)
	if strings.TrimSpace(combined) == "" {
		return &ChatResult{
			Response: "The uploaded files contain no readable text content. " +
				"Ensure the documents contain extractable text.",
			ContextUsed: "No readable content",
		}, nil
	}

	prompt := buildChatPrompt(patient, combined, question)
	answer, err := s.client.Complete(ctx, chatSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("chat failed: %w", err)
	}

	return &ChatResult{
		Response:    strings.TrimSpace(answer),
		ContextUsed: fmt.Sprintf("Based on %d medical files: %s", len(used), strings.Join(used, ", ")),
	}, nil
}

func selectFiles(files []storage.MedicalFile, fileIDs []string) []storage.MedicalFile {
	if len(fileIDs) == 0 {
		return files
	}
	wanted := make(map[string]bool, len(fileIDs))
	for _, id := range fileIDs {
		wanted[id] = true
	}
	var selected []storage.MedicalFile
	for _, f := range files {
		if wanted[f.ID] {
			selected = append(selected, f)
		}
	}
	return selected
}

func combineTexts(files []storage.MedicalFile) (string, []string) {
	var b strings.Builder
	var used []string
	for _, f := range files {
		if strings.TrimSpace(f.ExtractedText) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n\n--- %s (uploaded: %s) ---\n", f.Filename, f.UploadDate.Format("2006-01-02"))
		b.WriteString(f.ExtractedText)
		used = append(used, f.Filename)
	}
	return b.String(), used
}

func buildFilePrompt(text string) string {
	return fmt.Sprintf(`Analyze the following medical document and provide a structured summary.

Document content:
%s

Respond with this JSON structure:
{
  "summary": "A comprehensive summary of the medical document",
  "key_findings": ["..."],
  "recommendations": ["..."]
}

Focus on medical conditions and diagnoses, test results and lab values,
medications and treatments, important dates, and risk factors.`, text)
}

func buildSummaryPrompt(patientID, summaryType, combined string) string {
	switch summaryType {
	case "brief":
		return fmt.Sprintf(`Provide a brief medical summary for patient %s based on these records:

%s

Respond with this JSON structure:
{
  "summary": "Brief overview of the patient's medical status",
  "key_findings": ["Top 3-5 most important findings"],
  "recommendations": ["Essential recommendations"]
}`, patientID, combined)
	case "medications":
		return fmt.Sprintf(`Focus on medication history and management for patient %s:

%s

Respond with this JSON structure:
{
  "summary": "Medication history and current prescriptions",
  "key_findings": ["Current medications", "Medication changes", "Drug interactions"],
  "recommendations": ["Medication management recommendations"]
}`, patientID, combined)
	default:
		return fmt.Sprintf(`Analyze the following medical records for patient %s and provide a comprehensive medical summary.

Medical Records:
%s

Respond with this JSON structure:
{
  "summary": "Comprehensive medical history and current status",
  "key_findings": ["Important medical findings", "Test results", "Diagnoses"],
  "recommendations": ["Treatment recommendations", "Follow-up care", "Monitoring needs"]
}`, patientID, combined)
	}
}

func buildChatPrompt(patient *storage.Patient, records, question string) string {
	return fmt.Sprintf(`Patient Information:
Patient ID: %s
Name: %s
Age: %d
Gender: %s

Available Medical Records:
%s

Doctor's Question: %s`, patient.PatientID, patient.Name, patient.Age, patient.Gender, records, question)
}
