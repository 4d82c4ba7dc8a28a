package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"screening-datagen/pkg"
)

// FileSink writes each record as three JSON files under Dir: the
// transcript, the prompt traces and the raw session log.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

type transcriptFile struct {
	*pkg.SessionRecord
	// Shadows the embedded traces, which live in their own file.
	PromptTraces   []pkg.PromptTrace `json:"prompt_traces,omitempty"`
	PromptTraceLog string            `json:"prompt_trace_file"`
	RawLog         string            `json:"raw_log_file"`
}

type traceFile struct {
	AgentID      string            `json:"agent_id"`
	RunID        string            `json:"run_id"`
	PromptTraces []pkg.PromptTrace `json:"prompt_traces"`
}

type rawFile struct {
	AgentID      string             `json:"agent_id"`
	Session      *pkg.SessionRecord `json:"session_data"`
	PromptTraces []pkg.PromptTrace  `json:"prompt_traces"`
}

// Paths returns the transcript, trace and raw log paths for agentID.
func (s *FileSink) Paths(agentID string) (transcript, traces, raw string) {
	return filepath.Join(s.Dir, "transcripts", fmt.Sprintf("transcript_%s.json", agentID)),
		filepath.Join(s.Dir, "prompt_traces", fmt.Sprintf("prompttrace_%s.json", agentID)),
		filepath.Join(s.Dir, "logs", fmt.Sprintf("session_%s_raw.json", agentID))
}

// Save writes the three files and returns the transcript path.
func (s *FileSink) Save(ctx context.Context, rec *pkg.SessionRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", wrapError("file", "save", err)
	}
	transcript, traces, raw := s.Paths(rec.AgentID)

	if err := writeJSON(traces, traceFile{AgentID: rec.AgentID, RunID: rec.RunID, PromptTraces: rec.PromptTraces}); err != nil {
		return "", wrapError("file", "write traces", err)
	}
	if err := writeJSON(raw, rawFile{AgentID: rec.AgentID, Session: rec, PromptTraces: rec.PromptTraces}); err != nil {
		return "", wrapError("file", "write raw log", err)
	}
	if err := writeJSON(transcript, transcriptFile{SessionRecord: rec, PromptTraceLog: traces, RawLog: raw}); err != nil {
		return "", wrapError("file", "write transcript", err)
	}
	return transcript, nil
}

// ReadTranscript loads a transcript file written by Save.
func ReadTranscript(path string) (*pkg.SessionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError("file", "read", err)
	}
	var rec pkg.SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, wrapError("file", "decode", err)
	}
	return &rec, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
