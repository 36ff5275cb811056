package officemanager

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"opstats/internal/core/calc"
	"opstats/internal/core/locale"

	perr "opstats/internal/platform/errors"
)

// Delivery-statistics workbook layout: data starts on row 7, unit name
// in column A, trips-with-one-order share in column N as a fraction
const (
	tripsFirstDataRow = 7
	tripsColumnCount  = 14
)

// ParseTripsWithOneOrder reads the delivery-statistics workbook.
// Percent cells arrive as fractions and are converted to percent at
// this boundary, rounded to two decimals. Short rows are footer noise
// and are skipped
func ParseTripsWithOneOrder(workbook []byte) ([]TripsWithOneOrder, error) {
	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	if err != nil {
		return nil, perr.Parsef("open workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, perr.Parsef("read sheet %q: %v", sheet, err)
	}

	var out []TripsWithOneOrder
	for i := tripsFirstDataRow - 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < tripsColumnCount || row[0] == "" {
			continue
		}
		fraction, err := locale.Float(row[tripsColumnCount-1])
		if err != nil {
			return nil, perr.Parsef("row %d: bad percentage %q", i+1, row[tripsColumnCount-1])
		}
		out = append(out, TripsWithOneOrder{
			UnitName:   row[0],
			Percentage: calc.Round2(fraction * 100),
		})
	}
	return out, nil
}
