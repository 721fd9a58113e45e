package export

import (
	"bufio"
	"encoding/csv"
	"os"

	"threadscraper/pkg/models"
)

// utf8BOM lets spreadsheet apps detect the encoding
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a BOM-prefixed UTF-8 CSV with a header row
func WriteCSV(path string, header []string, records []models.PostRecord) error {
	return replaceFile(path, func(f *os.File) error {
		bw := bufio.NewWriter(f)
		if _, err := bw.Write(utf8BOM); err != nil {
			return err
		}

		w := csv.NewWriter(bw)
		if err := w.Write(header); err != nil {
			return err
		}
		for _, rec := range records {
			if err := w.Write(Row(rec)); err != nil {
				return err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
		return bw.Flush()
	})
}
