// Package writer serializes a Table back to CSV, header first, columns in
// the table's declared order. An existing file at the target path is
// overwritten without prompting; avoiding accidental overwrite is the
// caller's job.
package writer

import (
	"encoding/csv"
	"fmt"
	"os"

	"flightetl/internal/table"
)

// WriteCSV writes t to path as UTF-8 CSV. Nil cells render as empty fields.
func WriteCSV(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		f.Close()
		return fmt.Errorf("write header to %s: %w", path, err)
	}

	line := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			s, _ := r.String(c)
			line[i] = s
		}
		if err := w.Write(line); err != nil {
			f.Close()
			return fmt.Errorf("write row to %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
