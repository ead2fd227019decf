// Package pdf renders study documents as PDF files.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/assistant"
)

var dayLabels = map[string]string{
	"segunda": "Segunda-feira",
	"terca":   "Terça-feira",
	"quarta":  "Quarta-feira",
	"quinta":  "Quinta-feira",
	"sexta":   "Sexta-feira",
	"sabado":  "Sábado",
	"domingo": "Domingo",
}

// RoutineRenderer lays out a StudySchedule on A4 pages with the core Helvetica font.
type RoutineRenderer struct {
	AppName string
	now     func() time.Time
}

func NewRoutineRenderer(appName string) *RoutineRenderer {
	return &RoutineRenderer{AppName: appName, now: time.Now}
}

func (r *RoutineRenderer) Render(s assistant.StudySchedule) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; translate the accents
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(tr("Rotina de estudos ENEM"), false)
	pdf.SetAuthor(r.AppName, false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s · Página %d/{nb}", r.AppName, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr("Rotina de estudos ENEM"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	sub := fmt.Sprintf("Gerada em %s · %.1f horas por semana", r.now().Format("02/01/2006"), s.HorasEstudoSemana)
	pdf.CellFormat(0, 7, tr(sub), "", 1, "C", false, 0, "")
	hr(pdf)

	for _, day := range assistant.Weekdays {
		blocks := s.Rotina[day]
		sectionTitle(pdf, tr(dayLabels[day]))
		if len(blocks) == 0 {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.CellFormat(0, 6, tr("Descanso"), "", 1, "L", false, 0, "")
			pdf.Ln(2)
			continue
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(30, 7, tr("Horário"), "1", 0, "L", true, 0, "")
		pdf.CellFormat(45, 7, tr("Matéria"), "1", 0, "L", true, 0, "")
		pdf.CellFormat(75, 7, tr("Atividade"), "1", 0, "L", true, 0, "")
		pdf.CellFormat(20, 7, tr("Min"), "1", 1, "R", true, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		for _, b := range blocks {
			dur := ""
			if b.Duracao > 0 {
				dur = fmt.Sprintf("%d", b.Duracao)
			}
			pdf.CellFormat(30, 7, tr(b.Horario), "1", 0, "L", false, 0, "")
			pdf.CellFormat(45, 7, fit(pdf, tr(b.Materia), 43), "1", 0, "L", false, 0, "")
			pdf.CellFormat(75, 7, fit(pdf, tr(b.Atividade), 73), "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 7, dur, "1", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	if len(s.Dicas) > 0 {
		hr(pdf)
		sectionTitle(pdf, "Dicas")
		pdf.SetFont("Helvetica", "", 11)
		for i, tip := range s.Dicas {
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, tip)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing routine pdf")
	}
	return buf.Bytes(), nil
}

func sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, s, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 3)
}

// fit truncates cp1252 text (one byte per glyph) to width mm.
func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	for len(text) > 0 && pdf.GetStringWidth(text+"...") > width {
		text = text[:len(text)-1]
	}
	return text + "..."
}
