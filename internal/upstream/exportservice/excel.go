package exportservice

import (
	"bytes"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"opstats/internal/core/locale"
	"opstats/internal/core/period"

	perr "opstats/internal/platform/errors"
)

const (
	promoFirstDataRow = 6
	promoColumnCount  = 9

	promoTimeLayout = "02.01.2006 15:04:05"
)

// ParseUsedPromoCodes reads the used-promo-codes workbook. Rows above
// the data region and summary rows with missing cells are skipped
func ParseUsedPromoCodes(workbook []byte) ([]UsedPromoCode, error) {
	book, err := excelize.OpenReader(bytes.NewReader(workbook))
	if err != nil {
		return nil, perr.Parsef("promo codes workbook: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows(book.GetSheetName(0))
	if err != nil {
		return nil, perr.Parsef("promo codes workbook: %v", err)
	}

	var codes []UsedPromoCode
	for i, row := range rows {
		if i < promoFirstDataRow-1 {
			continue
		}
		if filledCells(row) != promoColumnCount {
			continue
		}

		orderedAt, err := time.ParseInLocation(
			promoTimeLayout, strings.TrimSpace(row[7]), period.Moscow,
		)
		if err != nil {
			return nil, perr.Parsef("promo codes workbook: row %d: %v", i+1, err)
		}
		price, err := locale.Float(row[8])
		if err != nil {
			return nil, perr.Parsef("promo codes workbook: row %d: %v", i+1, err)
		}

		codes = append(codes, UsedPromoCode{
			UnitName:           strings.TrimSpace(row[0]),
			PromoCode:          strings.TrimSpace(row[1]),
			Event:              strings.TrimSpace(row[2]),
			TypicalDescription: strings.TrimSpace(row[3]),
			OrderType:          strings.TrimSpace(row[4]),
			OrderStatus:        strings.TrimSpace(row[5]),
			OrderNo:            strings.TrimSpace(row[6]),
			OrderedAt:          orderedAt,
			OrderPrice:         price,
		})
	}
	return codes, nil
}

func filledCells(row []string) int {
	n := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}
