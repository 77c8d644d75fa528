// Package pdf renders the symptom diary artifact handed to clinic staff.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"symptom-diary-server/internal/models"
)

const (
	marginLeft   = 50.0
	marginTop    = 50.0
	bottomLimit  = 80.0 // start a new page when less vertical space remains
	lineHeight   = 15.0
	descIndent   = 10.0
	descMaxRunes = 120
)

// DiaryFilename is the download name for a patient's exported diary.
func DiaryFilename(email string) string {
	return fmt.Sprintf("%s_DiarioSintomi.pdf", email)
}

// BuildDiary renders the patient's full symptom history as an A4 document:
// a title, the patient's email, then one line per entry (ascending by
// timestamp) with an optional truncated description line underneath.
func BuildDiary(user *models.User, entries []models.SymptomEntry) ([]byte, error) {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	_, pageHeight := doc.GetPageSize()

	y := marginTop
	doc.SetFont("Helvetica", "B", 14)
	doc.Text(marginLeft, y, "Diario Sintomi")
	y += 30

	doc.SetFont("Helvetica", "", 10)
	doc.Text(marginLeft, y, fmt.Sprintf("Utente: %s", user.Email))
	y += 30

	for _, entry := range entries {
		if y > pageHeight-bottomLimit {
			doc.AddPage()
			y = marginTop
			doc.SetFont("Helvetica", "", 10)
		}

		line := fmt.Sprintf("- %s | %s (Sev. %d/10)",
			entry.Timestamp.Format("02/01/2006 15:04"), entry.Title, entry.Severity)
		doc.Text(marginLeft, y, line)
		y += lineHeight

		if entry.Description != "" {
			doc.Text(marginLeft+descIndent, y, truncate(entry.Description, descMaxRunes))
			y += lineHeight
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render diary PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
