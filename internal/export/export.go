// Package export renders scholar records as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/keris/scholar-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the scholar rows.
const SheetName = "Scholars"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var header = []interface{}{"ID", "Name", "Email", "Instagram", "About", "Sponsor", "Major", "Institution", "Image"}

// WriteScholars writes one header row and one row per scholar to w as XLSX.
func WriteScholars(w io.Writer, scholars []model.Scholar) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, s := range scholars {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		image := ""
		if s.Image != nil {
			image = *s.Image
		}
		row := []interface{}{
			s.ID.Hex(),
			s.Name,
			s.Email,
			s.IGAcc,
			s.About,
			s.Sponsor,
			strings.Join(model.TextValues(s.Major), ", "),
			strings.Join(model.TextValues(s.Institution), ", "),
			image,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
