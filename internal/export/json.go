package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kursadm/tomatui/internal/session"
)

type jsonExport struct {
	ExportedAt string    `json:"exported_at"`
	Count      int       `json:"count"`
	Days       []jsonDay `json:"days"`
}

type jsonDay struct {
	Date          string   `json:"date"`
	WorkSessions  int      `json:"work_sessions"`
	WorkMinutes   int      `json:"work_minutes"`
	WorkTime      string   `json:"work_time"`
	BreakSessions int      `json:"break_sessions"`
	BreakMinutes  int      `json:"break_minutes"`
	Tasks         []string `json:"tasks,omitempty"`
}

func ToJSON(days []session.DailySession, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(days),
	}

	for _, d := range days {
		export.Days = append(export.Days, jsonDay{
			Date:          d.Date,
			WorkSessions:  d.WorkSessions,
			WorkMinutes:   d.WorkMinutes,
			WorkTime:      formatMinutes(d.WorkMinutes),
			BreakSessions: d.BreakSessions,
			BreakMinutes:  d.BreakMinutes,
			Tasks:         d.Tasks,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
