package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"snapdiff/internal/shared/util"
)

type triggerRecord struct {
	Trigger     string    `json:"trigger"`
	GeneratedAt time.Time `json:"generated_at"`
}

// WriteReports renders the scan's trigger set in each configured output
// format. Formats unknown to the writer were already rejected by config
// validation.
func (a *App) WriteReports(result ScanResult) error {
	dir := a.Config.Output.Directory
	if dir == "" {
		dir = a.Config.Paths.StateDir
	}

	triggers := result.Triggers.Sorted()
	now := time.Now().UTC()

	for _, format := range a.Config.Output.Formats {
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "text":
			var buf bytes.Buffer
			fmt.Fprintf(&buf, "# %d triggers, %d modules scanned, %s\n",
				len(triggers), result.ModulesScanned, now.Format(time.RFC3339))
			for _, trigger := range triggers {
				buf.WriteString(trigger)
				buf.WriteByte('\n')
			}
			path := filepath.Join(dir, "triggers.txt")
			if err := util.WriteFileWithDirs(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write text report %q: %w", path, err)
			}
		case "jsonl":
			var buf bytes.Buffer
			enc := json.NewEncoder(&buf)
			for _, trigger := range triggers {
				if err := enc.Encode(triggerRecord{Trigger: trigger, GeneratedAt: now}); err != nil {
					return fmt.Errorf("encode trigger %q: %w", trigger, err)
				}
			}
			path := filepath.Join(dir, "triggers.jsonl")
			if err := util.WriteFileWithDirs(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write jsonl report %q: %w", path, err)
			}
		}
	}
	return nil
}
