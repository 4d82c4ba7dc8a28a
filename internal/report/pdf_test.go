package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"screening-datagen/internal/catalog"
	"screening-datagen/pkg"
)

func sampleRecord() *pkg.SessionRecord {
	return &pkg.SessionRecord{
		AgentID:     "AGENT_1111222233334444",
		RunID:       "run-9",
		GroundTruth: map[string]pkg.Frequency{catalog.Sleep: pkg.FreqOften, catalog.DepressedMood: pkg.FreqSome},
		AskedOrder:  []string{catalog.Sleep, catalog.DepressedMood},
		Transcript: []pkg.Message{
			{Role: pkg.RoleDoctor, Content: "How have you been sleeping?"},
			{Role: pkg.RolePatient, Content: "Badly, most nights."},
		},
	}
}

func TestOutline(t *testing.T) {
	blocks := Outline(sampleRecord())
	var texts []string
	for _, b := range blocks {
		texts = append(texts, b.Text)
	}
	find := func(s string) int {
		for i, t := range texts {
			if t == s {
				return i
			}
		}
		return -1
	}
	mood := find("- " + catalog.DepressedMood + ": SOME")
	sleep := find("- " + catalog.Sleep + ": OFTEN")
	if mood < 0 || sleep < 0 || mood > sleep {
		t.Fatalf("expected ground truth in DSM order, got %v", texts)
	}
	if find("1. "+catalog.Sleep) < 0 {
		t.Fatalf("expected asked order, got %v", texts)
	}
	last := texts[len(texts)-1]
	if last != "Patient: Badly, most nights." {
		t.Fatalf("expected transcript at the end, got %q", last)
	}
}

func TestRenderWithoutFont(t *testing.T) {
	e := &Exporter{FontPaths: []string{filepath.Join(t.TempDir(), "missing.ttf")}}
	err := e.Render(sampleRecord(), &bytes.Buffer{})
	if !errors.Is(err, ErrNoFont) {
		t.Fatalf("expected ErrNoFont, got %v", err)
	}
}

func TestRender(t *testing.T) {
	var font string
	for _, p := range DefaultFontPaths {
		if _, err := os.Stat(p); err == nil {
			font = p
			break
		}
	}
	if font == "" {
		t.Skip("no DejaVu font installed")
	}
	var buf bytes.Buffer
	if err := NewExporter(font).Render(sampleRecord(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("expected PDF output")
	}
}
