// Package verification orchestrates AI-assisted prescription checks:
// it combines the resolver's interaction findings with patient context
// into a prompt and parses the model's structured risk assessment.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/giygas/interactions-api/interactions"
	"github.com/giygas/interactions-api/llm"
)

// ErrNoDrugs is returned when the request lists no medications.
var ErrNoDrugs = errors.New("at least one drug is required")

// PrescribedDrug is one medication line of a prescription.
type PrescribedDrug struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

// Request carries the full prescription context to verify.
type Request struct {
	PatientAge      int              `json:"patient_age"`
	PatientGender   string           `json:"patient_gender"`
	ClinicalContext string           `json:"clinical_context"`
	Drugs           []PrescribedDrug `json:"drugs"`
}

// Alert is a single issue identified by the assessment.
type Alert struct {
	Severity       string `json:"severity"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

// Alternative is a suggested replacement medication.
type Alternative struct {
	Drug   string `json:"drug"`
	Reason string `json:"reason"`
	Notes  string `json:"notes,omitempty"`
}

// Result is the structured risk assessment. Overall is one of green,
// yellow or red.
type Result struct {
	Overall      string        `json:"overall"`
	Alerts       []Alert       `json:"alerts"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}

const systemPrompt = "You are a clinical pharmacist AI assistant. " +
	"Analyze prescriptions for potential issues and respond only with the requested JSON object, no prose."

// Service runs prescription verifications.
type Service struct {
	resolver *interactions.Resolver
	client   llm.Client
}

// NewService creates a verification service.
func NewService(resolver *interactions.Resolver, client llm.Client) *Service {
	return &Service{resolver: resolver, client: client}
}

// Verify checks the prescription against the interaction table and the
// generative model and returns the parsed assessment.
func (s *Service) Verify(ctx context.Context, req *Request) (*Result, error) {
	if len(req.Drugs) < 1 {
		return nil, ErrNoDrugs
	}

	names := make([]string, len(req.Drugs))
	for i, d := range req.Drugs {
		names[i] = d.Name
	}

	// Known interactions enrich the prompt. Too few resolvable drugs is
	// not an error here: the model still assesses dosage and context.
	var findings []interactions.Finding
	if result, err := s.resolver.Check(names); err == nil {
		findings = result.Interactions
	}

	var out Result
	if _, err := llm.AskJSON(ctx, s.client, systemPrompt, buildPrompt(req, findings), &out); err != nil {
		return nil, fmt.Errorf("prescription verification failed: %w", err)
	}

	if out.Alerts == nil {
		out.Alerts = []Alert{}
	}
	return &out, nil
}

func buildPrompt(req *Request, findings []interactions.Finding) string {
	var b strings.Builder

	b.WriteString("**Patient Information:**\n")
	fmt.Fprintf(&b, "- Age: %d\n", req.PatientAge)
	fmt.Fprintf(&b, "- Gender: %s\n", req.PatientGender)
	fmt.Fprintf(&b, "- Clinical Context: %s\n\n", req.ClinicalContext)

	b.WriteString("**Prescribed Medications:**\n")
	for _, d := range req.Drugs {
		fmt.Fprintf(&b, "- %s (Dosage: %s, Frequency: %s)\n", d.Name, d.Dosage, d.Frequency)
	}

	b.WriteString("\n**Known Drug-Drug Interactions (from internal database):**\n")
	if len(findings) == 0 {
		b.WriteString("No critical interactions found in the internal database.\n")
	} else {
		for _, f := range findings {
			fmt.Fprintf(&b, "- %s: %s\n", strings.Join(f.Pair, " & "), f.Description)
		}
	}

	b.WriteString(`
**Analysis Task:**
Based on all the information provided, identify potential problems such as
inappropriate dosage for the patient's age, contraindications based on the
clinical context, redundant therapies, and other risks not covered by the
simple drug-drug interaction check.

**Output Format:**
Respond with a single JSON object with this structure:
{
  "overall": "'green' | 'yellow' | 'red'",
  "alerts": [{"severity": "'critical' | 'advisory'", "message": "...", "recommendation": "..."}],
  "alternatives": [{"drug": "...", "reason": "...", "notes": "..."}]
}
If no issues are found, return an 'overall' status of 'green' with an empty 'alerts' array.
`)

	return b.String()
}
