package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/kursadm/tomatui/internal/session"
)

func ToCSV(days []session.DailySession, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Date", "Work Sessions", "Work Minutes", "Work Time", "Break Sessions", "Break Minutes", "Tasks"}); err != nil {
		return err
	}

	for _, d := range days {
		row := []string{
			d.Date,
			fmt.Sprintf("%d", d.WorkSessions),
			fmt.Sprintf("%d", d.WorkMinutes),
			formatMinutes(d.WorkMinutes),
			fmt.Sprintf("%d", d.BreakSessions),
			fmt.Sprintf("%d", d.BreakMinutes),
			strings.Join(d.Tasks, ", "),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
