package officemanager

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"opstats/internal/core/locale"
	"opstats/internal/core/period"

	perr "opstats/internal/platform/errors"
)

// Timestamp layouts the console renders into its tables
const (
	sectorTimeLayout = "02.01.2006 15:04"
	streetTimeLayout = "02.01.2006 15:04:05"
	orderTimeLayout  = "02.01.2006 15:04"
)

const noDataMarker = "данные не найдены"

func parseDoc(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, perr.Parsef("parse html: %v", err)
	}
	return doc, nil
}

// panelTitles reads the operational-statistics panel headlines in
// their fixed page order, already locale-cleaned
func panelTitles(doc *goquery.Document) []string {
	var titles []string
	doc.Find("h1.operationalStatistics_panelTitle").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, locale.Clean(s.Text()))
	})
	return titles
}

// ParseKitchenPartial reads the kitchen panel block. Panel order is
// fixed by the page: performance first, cooking time fourth
func ParseKitchenPartial(html string, unitID int64) (KitchenPartial, error) {
	var out KitchenPartial

	doc, err := parseDoc(html)
	if err != nil {
		return out, err
	}
	titles := panelTitles(doc)
	if len(titles) < 4 {
		return out, perr.Parsef("kitchen panel: want 4 titles, got %d", len(titles))
	}

	perHour, delta, err := locale.SplitPair(titles[0], "\n")
	if err != nil {
		return out, err
	}
	salesPerLaborHour, err := locale.Float(perHour)
	if err != nil {
		return out, err
	}
	deltaPercent, err := locale.Int(delta)
	if err != nil {
		return out, err
	}
	cookingTime, err := locale.MinSec(titles[3])
	if err != nil {
		return out, err
	}

	out = KitchenPartial{
		UnitID:                 unitID,
		SalesPerLaborHourToday: salesPerLaborHour,
		FromWeekBeforePercent:  deltaPercent,
		TotalCookingTime:       cookingTime,
	}
	return out, nil
}

// ParseDeliveryPartial reads the delivery panel block: heated shelf
// count third, "on shift / in queue" couriers fourth
func ParseDeliveryPartial(html string, unitID int64) (DeliveryPartial, error) {
	var out DeliveryPartial

	doc, err := parseDoc(html)
	if err != nil {
		return out, err
	}
	titles := panelTitles(doc)
	if len(titles) < 4 {
		return out, perr.Parsef("delivery panel: want 4 titles, got %d", len(titles))
	}

	shelfCount, err := locale.Int(titles[2])
	if err != nil {
		return out, err
	}
	onShiftRaw, inQueueRaw, err := locale.SplitPair(titles[3], "/")
	if err != nil {
		return out, err
	}
	onShift, err := locale.Int(onShiftRaw)
	if err != nil {
		return out, err
	}
	inQueue, err := locale.Int(inQueueRaw)
	if err != nil {
		return out, err
	}

	out = DeliveryPartial{
		UnitID:                 unitID,
		HeatedShelfOrdersCount: shelfCount,
		CouriersInQueueCount:   inQueue,
		CouriersOnShiftCount:   onShift,
	}
	return out, nil
}

func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("td").Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(td.Text()))
	})
	return cells
}

// ParseStopSalesBySectors reads the delivery-sector stop report grid
func ParseStopSalesBySectors(html string) ([]StopSaleBySector, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	var out []StopSaleBySector
	var rowErr error
	doc.Find("table#bootgrid-table tbody tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := rowCells(tr)
		if len(cells) < 6 {
			rowErr = perr.Parsef("sector stop row: want 6 cells, got %d", len(cells))
			return false
		}
		startedAt, err := time.ParseInLocation(sectorTimeLayout, cells[2], period.Moscow)
		if err != nil {
			rowErr = perr.Parsef("sector stop row: bad time %q", cells[2])
			return false
		}
		out = append(out, StopSaleBySector{
			UnitName:            cells[0],
			Sector:              cells[1],
			StartedAt:           startedAt,
			StaffNameWhoStopped: cells[3],
			StaffNameWhoResumed: cells[5],
		})
		return true
	})
	return out, rowErr
}

// ParseStopSalesByStreets reads the street stop report grid. The grid
// has no tbody; the first tr is the header
func ParseStopSalesByStreets(html string) ([]StopSaleByStreet, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	var out []StopSaleByStreet
	var rowErr error
	doc.Find("table#bootgrid-table tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if i == 0 {
			return true
		}
		cells := rowCells(tr)
		if len(cells) < 7 {
			rowErr = perr.Parsef("street stop row: want 7 cells, got %d", len(cells))
			return false
		}
		startedAt, err := time.ParseInLocation(streetTimeLayout, cells[3], period.Moscow)
		if err != nil {
			rowErr = perr.Parsef("street stop row: bad time %q", cells[3])
			return false
		}
		out = append(out, StopSaleByStreet{
			UnitName:            cells[0],
			Sector:              cells[1],
			Street:              cells[2],
			StartedAt:           startedAt,
			StaffNameWhoStopped: cells[4],
			StaffNameWhoResumed: cells[6],
		})
		return true
	})
	return out, rowErr
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseStockBalance reads a unit's ingredient stock table. Rows that
// fail the structural preconditions are footer or legend rows and are
// skipped, not errors
func ParseStockBalance(html string, unitID int64) ([]StockBalance, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	var out []StockBalance
	var rowErr error
	doc.Find("tbody tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := rowCells(tr)
		if len(cells) != 6 {
			return true
		}
		daysLeftRaw := cells[5]
		if !isDigits(daysLeftRaw) {
			return true
		}
		daysLeft, err := locale.Int(daysLeftRaw)
		if err != nil {
			rowErr = err
			return false
		}

		// ingredient cell is "Name, possibly with commas, unit"
		name := cells[0]
		comma := strings.LastIndex(name, ",")
		if comma < 0 {
			rowErr = perr.Parsef("stock row: no unit suffix in %q", name)
			return false
		}
		stocksUnit := strings.TrimSpace(name[comma+1:])
		ingredient := name[:comma]

		count, err := locale.Float(cells[1])
		if err != nil {
			rowErr = err
			return false
		}

		out = append(out, StockBalance{
			UnitID:         unitID,
			IngredientName: ingredient,
			StocksCount:    count,
			StocksUnit:     stocksUnit,
			DaysLeft:       daysLeft,
		})
		return true
	})
	return out, rowErr
}

func headerIndex(table *goquery.Selection) map[string]int {
	idx := make(map[string]int)
	table.Find("th").Each(func(i int, th *goquery.Selection) {
		idx[strings.TrimSpace(th.Text())] = i
	})
	return idx
}

// Column headers of the dine-in orders report
const (
	colDepartment  = "Отдел"
	colPhoneNumber = "№ телефона"
	colOrderedAt   = "Дата и время"
	colOrderNo     = "№ заказа"
	colPizzeria    = "Пиццерия"
)

// ParseRestaurantOrders reads the dine-in orders report table. Columns
// are located by header name because the console occasionally reorders
// them between releases
func ParseRestaurantOrders(html string) ([]RestaurantOrder, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, perr.Parsef("orders report: no table")
	}
	idx := headerIndex(table)
	for _, col := range []string{colDepartment, colPhoneNumber, colOrderedAt, colOrderNo} {
		if _, ok := idx[col]; !ok {
			return nil, perr.Parsef("orders report: missing column %q", col)
		}
	}

	var out []RestaurantOrder
	var rowErr error
	table.Find("tbody tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := rowCells(tr)
		need := max(idx[colDepartment], max(idx[colPhoneNumber], max(idx[colOrderedAt], idx[colOrderNo])))
		if len(cells) <= need {
			return true
		}
		orderedAt, err := time.ParseInLocation(orderTimeLayout, cells[idx[colOrderedAt]], period.Moscow)
		if err != nil {
			rowErr = perr.Parsef("orders report: bad time %q", cells[idx[colOrderedAt]])
			return false
		}
		out = append(out, RestaurantOrder{
			UnitName:    cells[idx[colDepartment]],
			OrderNo:     cells[idx[colOrderNo]],
			OrderedAt:   orderedAt,
			PhoneNumber: cells[idx[colPhoneNumber]],
		})
		return true
	})
	return out, rowErr
}

// ParseBeingLateCertificates reads the lateness-certificate report.
// The single-unit variant renders 7 columns without a pizzeria column
// and every row belongs to the requested unit; the multi-unit variant
// groups rows by pizzeria name
func ParseBeingLateCertificates(
	html string,
	requestUnitID int64,
	units []UnitIDAndName,
) ([]BeingLateCertificates, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}
	if strings.Contains(strings.ToLower(doc.Text()), noDataMarker) {
		return nil, nil
	}

	tables := doc.Find("table")
	if tables.Length() < 2 {
		return nil, perr.Parsef("certificates report: want 2 tables, got %d", tables.Length())
	}
	table := tables.Eq(1)
	idx := headerIndex(table)

	rows := table.Find("tbody tr")

	if _, hasPizzeria := idx[colPizzeria]; !hasPizzeria {
		name := ""
		for _, u := range units {
			if u.ID == requestUnitID {
				name = u.Name
			}
		}
		if rows.Length() == 0 {
			return nil, nil
		}
		return []BeingLateCertificates{{
			UnitID:   requestUnitID,
			UnitName: name,
			Count:    rows.Length(),
		}}, nil
	}

	nameToID := make(map[string]int64, len(units))
	for _, u := range units {
		nameToID[u.Name] = u.ID
	}

	counts := make(map[string]int)
	var order []string
	var rowErr error
	rows.EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := rowCells(tr)
		if len(cells) <= idx[colPizzeria] {
			return true
		}
		name := cells[idx[colPizzeria]]
		if _, ok := nameToID[name]; !ok {
			rowErr = perr.Parsef("certificates report: unknown unit %q", name)
			return false
		}
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	out := make([]BeingLateCertificates, 0, len(order))
	for _, name := range order {
		out = append(out, BeingLateCertificates{
			UnitID:   nameToID[name],
			UnitName: name,
			Count:    counts[name],
		})
	}
	return out, nil
}
