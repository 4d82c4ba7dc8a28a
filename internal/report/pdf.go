// Package report renders stored sessions as PDF documents.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/signintech/gopdf"

	"screening-datagen/internal/catalog"
	"screening-datagen/pkg"
)

const (
	fontName   = "DejaVu"
	pageBottom = 790.0
	lineWidth  = 500.0
)

// DefaultFontPaths are tried in order when no font is configured.
var DefaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// ErrNoFont is returned when none of the font paths can be loaded.
var ErrNoFont = errors.New("no usable TTF font")

// Block is one paragraph of the document at a font size.
type Block struct {
	Size float64
	Text string
	// Gap is the vertical space after the block.
	Gap float64
}

// Outline lays out rec as a sequence of blocks: header, ground truth,
// asked order and the transcript.
func Outline(rec *pkg.SessionRecord) []Block {
	blocks := []Block{
		{Size: 18, Text: "Screening session transcript", Gap: 24},
		{Size: 10, Text: "Agent: " + rec.AgentID, Gap: 12},
		{Size: 10, Text: "Run: " + rec.RunID, Gap: 12},
		{Size: 10, Text: "Generated: " + rec.CreatedAt.UTC().Format("2006-01-02 15:04 MST"), Gap: 12},
		{Size: 10, Text: fmt.Sprintf("Template: %s   Persona: %s   Pacing: %s", rec.Profile.TemplateID, rec.Persona.ID, rec.Microstyle.Pacing), Gap: 12},
		{Size: 10, Text: fmt.Sprintf("Doctor turns: %d / %d   Final disclosure: %s", rec.DoctorTurns, rec.Plan.MaxDoctorTurns, rec.FinalDisclosure), Gap: 20},
		{Size: 13, Text: "Ground truth", Gap: 15},
	}
	for _, item := range catalog.DSMItems {
		freq, ok := rec.GroundTruth[item]
		if !ok {
			continue
		}
		blocks = append(blocks, Block{Size: 10, Text: fmt.Sprintf("- %s: %s", item, freq), Gap: 12})
	}

	blocks = append(blocks, Block{Size: 13, Text: "Asked order", Gap: 15})
	for i, item := range rec.AskedOrder {
		blocks = append(blocks, Block{Size: 10, Text: fmt.Sprintf("%d. %s", i+1, item), Gap: 12})
	}

	blocks = append(blocks, Block{Size: 13, Text: "Conversation", Gap: 15})
	for _, m := range rec.Transcript {
		blocks = append(blocks, Block{Size: 11, Text: speaker(m.Role) + ": " + m.Content, Gap: 18})
	}
	return blocks
}

func speaker(r pkg.MessageRole) string {
	if r == pkg.RoleDoctor {
		return "Doctor"
	}
	return "Patient"
}

// Exporter renders records with a TTF font loaded from FontPaths.
type Exporter struct {
	FontPaths []string
}

func NewExporter(fontPath string) *Exporter {
	paths := DefaultFontPaths
	if fontPath != "" {
		paths = append([]string{fontPath}, DefaultFontPaths...)
	}
	return &Exporter{FontPaths: paths}
}

// Render writes rec as an A4 PDF to w.
func (e *Exporter) Render(rec *pkg.SessionRecord, w io.Writer) error {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()
	if err := e.loadFont(&pdf); err != nil {
		return err
	}

	for _, b := range Outline(rec) {
		if err := pdf.SetFont(fontName, "", b.Size); err != nil {
			return err
		}
		lines, err := pdf.SplitText(b.Text, lineWidth)
		if err != nil {
			// SplitText rejects empty strings.
			lines = []string{strings.TrimSpace(b.Text)}
		}
		for _, l := range lines {
			if pdf.GetY() > pageBottom {
				pdf.AddPage()
			}
			if err := pdf.Cell(nil, l); err != nil {
				return err
			}
			pdf.Br(b.Size + 2)
		}
		pdf.Br(b.Gap - b.Size - 2)
	}

	if _, err := pdf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// WriteFile renders rec to path.
func (e *Exporter) WriteFile(rec *pkg.SessionRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := e.Render(rec, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (e *Exporter) loadFont(pdf *gopdf.GoPdf) error {
	var lastErr error
	for _, path := range e.FontPaths {
		if err := pdf.AddTTFFont(fontName, path); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("%w (last error: %v)", ErrNoFont, lastErr)
}
