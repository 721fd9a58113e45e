package export

import (
	"os"

	"github.com/xuri/excelize/v2"
	"threadscraper/pkg/models"
)

// SheetName is the worksheet holding the posts
const SheetName = "Posts"

// WriteXLSX writes one worksheet with a header row. num_images is stored as a number.
func WriteXLSX(path string, header []string, records []models.PostRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &head); err != nil {
		return err
	}

	for i, rec := range records {
		cells := Row(rec)
		row := []interface{}{cells[0], cells[1], cells[2], rec.MediaCount, cells[4]}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetName, "A", "C", 48); err != nil {
		return err
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return replaceFile(path, func(out *os.File) error {
		_, err := f.WriteTo(out)
		return err
	})
}
