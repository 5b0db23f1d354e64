// Package medfiles implements the medical file service: upload
// validation, text extraction, on-disk storage, AI summarization and
// record-grounded chat.
package medfiles

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// AllowedExtensions lists the accepted upload file types.
var AllowedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".doc":  true,
	".docx": true,
	".jpg":  true,
	".png":  true,
}

const (
	pdfTextLimit     = 15000
	genericTextLimit = 5000
)

var parenthesizedText = regexp.MustCompile(`\(([^)]+)\)`)

// ExtractText pulls readable text out of an uploaded file. Full format
// parsing is out of scope; plain text is decoded directly and PDFs go
// through a best-effort literal-string scan. The result is what the AI
// summarizer and chat work from.
func ExtractText(content []byte, filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		if utf8.Valid(content) {
			return strings.TrimSpace(string(content))
		}
		return cleanPrintable(string(content), genericTextLimit)
	case ".pdf":
		return extractPDFText(content, filename)
	default:
		return cleanPrintable(string(content), genericTextLimit)
	}
}

// extractPDFText scans for parenthesized literal strings, which is how
// uncompressed PDF content streams carry text. Scanned or compressed
// documents yield nothing useful; the caller gets an explanatory note
// instead of empty output.
func extractPDFText(content []byte, filename string) string {
	text := string(content)

	matches := parenthesizedText.FindAllStringSubmatch(text, -1)
	if len(matches) > 0 {
		parts := make([]string, 0, len(matches))
		for _, m := range matches {
			parts = append(parts, m[1])
		}
		extracted := cleanPrintable(strings.Join(parts, " "), pdfTextLimit)
		if len(extracted) > 50 {
			return extracted
		}
	}

	return fmt.Sprintf("[PDF file %q processed but no readable text found. "+
		"This may be a scanned or image-based document; upload a text-based PDF "+
		"or a .txt file for better AI analysis.]", filename)
}

// cleanPrintable strips non-printable runes, collapses whitespace and
// truncates to limit.
func cleanPrintable(s string, limit int) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	cleaned := strings.Join(strings.Fields(b.String()), " ")
	if len(cleaned) > limit {
		cleaned = cleaned[:limit] + "\n\n[Document truncated for processing...]"
	}
	return cleaned
}
