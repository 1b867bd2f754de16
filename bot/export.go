package bot

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/gsem/gradebot/progress"
	"github.com/pkg/errors"
)

const passedMark = "+"

// WriteReport writes one CSV row per student: group, name, token, session
// state, one column per task and the completed count.
func WriteReport(w io.Writer, rows []progress.Row, taskIDs []string) error {
	cw := csv.NewWriter(w)

	header := append([]string{"group", "last_name", "first_name", "token", "logged_in"}, taskIDs...)
	header = append(header, "completed")
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "[WriteReport] header")
	}

	for _, row := range rows {
		loggedIn := "no"
		if row.Active {
			loggedIn = "yes"
		}
		record := []string{row.Group, row.LastName, row.FirstName, row.Token, loggedIn}
		for _, id := range taskIDs {
			mark := ""
			if row.Progress[id] {
				mark = passedMark
			}
			record = append(record, mark)
		}
		record = append(record, progress.Summary(row.Progress, len(taskIDs)))
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "[WriteReport] row %s", row.Token)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "[WriteReport] flush")
}

// WriteReportFile replaces path with a fresh report.
func WriteReportFile(path string, rows []progress.Row, taskIDs []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "[WriteReportFile] create folder")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "[WriteReportFile] create temp file")
	}
	defer os.Remove(tmp.Name())

	if err := WriteReport(tmp, rows, taskIDs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[WriteReportFile] close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "[WriteReportFile] replace report")
}
