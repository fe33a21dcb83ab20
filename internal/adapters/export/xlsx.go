package export

import (
	"aed-location-service/internal/domain"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "AED"

var header = []any{
	"地区",
	"連番",
	"設置事業所名",
	"郵便番号",
	"住所",
	"電話番号",
	"利用可能時間",
	"AED設置場所",
	"緯度",
	"経度",
}

// WriteXLSX writes locations as a single-sheet workbook with one row per location.
func WriteXLSX(w io.Writer, locations []domain.InstallationLocation) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("write xlsx: rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx: header: %w", err)
	}

	for i, loc := range locations {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("write xlsx: row %d: %w", i+2, err)
		}

		row := []any{
			loc.Area(),
			loc.LocationID(),
			loc.Name(),
			loc.PostalCode(),
			loc.Address(),
			loc.PhoneNumber(),
			loc.AvailableTime(),
			loc.Floor(),
			loc.Latitude(),
			loc.Longitude(),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write xlsx: row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("write xlsx: freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}

	return nil
}
