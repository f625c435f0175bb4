package formatter

import "encoding/csv"

func (f *Formatter) writeCSV(headers []string, rows [][]string) error {
	w := csv.NewWriter(f.w)
	defer w.Flush()

	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
