package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"screening-datagen/internal/report"
	"screening-datagen/internal/store"
	"screening-datagen/pkg"
)

var exportCmd = &cobra.Command{
	Use:   "export <runID|transcript.json>",
	Short: "Export a stored session transcript as PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		out, _ := f.GetString("out")
		font, _ := f.GetString("font")
		if font == "" {
			font = cfg.FontPath
		}
		name, _ := f.GetString("store")
		if name == "" {
			name = defaultStore()
		}

		rec, err := loadRecord(context.Background(), args[0], name)
		if err != nil {
			return err
		}
		if out == "" {
			out = fmt.Sprintf("transcript_%s.pdf", rec.AgentID)
		}
		if err := report.NewExporter(font).WriteFile(rec, out); err != nil {
			return fmt.Errorf("failed to export %s: %w", args[0], err)
		}
		fmt.Printf("Transcript written to %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "", "Output PDF path (defaults to transcript_<agent>.pdf)")
	exportCmd.Flags().String("font", "", "TTF font to embed")
	exportCmd.Flags().String("store", "", "Store holding the run: postgres or sqlite")
}

// loadRecord reads a transcript file written by the file sink, or looks
// the run id up in a SQL store.
func loadRecord(ctx context.Context, ref, storeName string) (*pkg.SessionRecord, error) {
	if strings.HasSuffix(ref, ".json") {
		return store.ReadTranscript(ref)
	}
	repo, _, err := openRepository(ctx, storeName)
	if err != nil {
		return nil, err
	}
	defer repo.DB.Close()
	return repo.GetSession(ctx, ref)
}
