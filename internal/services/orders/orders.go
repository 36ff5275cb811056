// Package orders builds the order-forensics reports: repeated phone
// numbers at the counter, canceled deliveries and bonus-program reach
package orders

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"opstats/internal/core/batch"
	"opstats/internal/core/period"
	"opstats/internal/upstream/exportservice"
	"opstats/internal/upstream/officemanager"
	"opstats/internal/upstream/shiftmanager"

	perr "opstats/internal/platform/errors"
)

// Console is the slice of the console API this service consumes
type Console interface {
	RestaurantOrders(ctx context.Context, p period.Period, unitIDs []int64) ([]officemanager.RestaurantOrder, error)
}

// ShiftManager walks the failed-order pages
type ShiftManager interface {
	CanceledOrdersBrief(ctx context.Context, p period.Period) ([]shiftmanager.OrderBrief, error)
	OrderDetail(ctx context.Context, brief shiftmanager.OrderBrief) (shiftmanager.CanceledOrder, error)
}

// Export downloads the used-promo-codes workbook
type Export interface {
	PromoCodesWorkbook(ctx context.Context, p period.Period, unitIDs []int64) ([]byte, error)
}

// Service assembles order reports
type Service struct {
	console Console
	shift   ShiftManager
	export  Export
	width   int
}

// New builds the service. width caps the detail fan-out, 0 means default
func New(console Console, shift ShiftManager, export Export, width int) *Service {
	return &Service{console: console, shift: shift, export: export, width: width}
}

// CheatedOrder is one order inside a suspicious phone-number group
type CheatedOrder struct {
	Number    string    `json:"number"`
	CreatedAt time.Time `json:"created_at"`
}

// CheatedOrders is every order of one unit sharing one phone number
type CheatedOrders struct {
	UnitName    string         `json:"unit_name"`
	PhoneNumber string         `json:"phone_number"`
	Orders      []CheatedOrder `json:"orders"`
}

// Cheated groups today's dine-in orders by unit and phone number and
// keeps the groups reaching threshold. Orders without a phone number
// never form a group. Output order follows first appearance in the
// report, so repeated calls over the same data agree
func (s *Service) Cheated(ctx context.Context, unitIDs []int64, threshold int) ([]CheatedOrders, error) {
	if threshold < 1 {
		return nil, perr.ValidationErrf("threshold must be positive, got %d", threshold)
	}

	orders, err := s.console.RestaurantOrders(ctx, period.Today(), unitIDs)
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		unitName    string
		phoneNumber string
	}
	groups := make(map[groupKey][]CheatedOrder)
	var order []groupKey
	for _, o := range orders {
		if o.PhoneNumber == "" {
			continue
		}
		key := groupKey{unitName: o.UnitName, phoneNumber: o.PhoneNumber}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], CheatedOrder{Number: o.OrderNo, CreatedAt: o.OrderedAt})
	}

	var out []CheatedOrders
	for _, key := range order {
		group := groups[key]
		if len(group) < threshold {
			continue
		}
		out = append(out, CheatedOrders{
			UnitName:    key.unitName,
			PhoneNumber: key.phoneNumber,
			Orders:      group,
		})
	}
	return out, nil
}

// CanceledReport is the batch-shaped canceled-orders response. The
// per-unit error slot holds order ids here: the fan-out runs over the
// day's canceled orders, not over units
type CanceledReport struct {
	Orders        []shiftmanager.CanceledOrder `json:"orders"`
	ErrorOrderIDs []uuid.UUID                  `json:"error_order_ids"`
}

// Canceled lists today's canceled orders with their detail pages. A
// detail page that fails to load or parse costs that order only
func (s *Service) Canceled(ctx context.Context) (CanceledReport, error) {
	briefs, err := s.shift.CanceledOrdersBrief(ctx, period.Today())
	if err != nil {
		return CanceledReport{}, err
	}

	report := CanceledReport{
		Orders:        []shiftmanager.CanceledOrder{},
		ErrorOrderIDs: []uuid.UUID{},
	}
	if len(briefs) == 0 {
		return report, nil
	}

	briefByID := batch.IndexBy(briefs,
		func(b shiftmanager.OrderBrief) uuid.UUID { return b.ID })
	ids := make([]uuid.UUID, len(briefs))
	for i, b := range briefs {
		ids[i] = b.ID
	}

	res, err := batch.Aggregate(ctx, ids,
		func(ctx context.Context, id uuid.UUID) (shiftmanager.CanceledOrder, error) {
			detail, err := s.shift.OrderDetail(ctx, briefByID[id])
			if err != nil {
				return shiftmanager.CanceledOrder{}, batch.Fail(id, err)
			}
			return detail, nil
		},
		batch.WithWidth(s.width),
	)
	if err != nil {
		return CanceledReport{}, err
	}

	report.Orders = append(report.Orders, res.Units...)
	report.ErrorOrderIDs = append(report.ErrorOrderIDs, res.Errors...)
	return report, nil
}

// UnitRestaurantStatistics is how much of a unit's counter traffic
// runs through the bonus program
type UnitRestaurantStatistics struct {
	UnitID                        int64 `json:"unit_id"`
	OrdersWithPhoneNumbersCount   int   `json:"orders_with_phone_numbers_count"`
	OrdersWithPhoneNumbersPercent int   `json:"orders_with_phone_numbers_percent"`
	TotalOrdersCount              int   `json:"total_orders_count"`
}

// RestaurantStatistics counts bonus-program orders per unit. Units
// absent from the report get explicit zero rows. An order naming a
// unit outside the request means the report layout drifted and is an
// error, not a skip
func (s *Service) RestaurantStatistics(ctx context.Context, units []officemanager.UnitIDAndName) ([]UnitRestaurantStatistics, error) {
	unitIDs := make([]int64, len(units))
	idByName := make(map[string]int64, len(units))
	for i, unit := range units {
		unitIDs[i] = unit.ID
		idByName[unit.Name] = unit.ID
	}

	orders, err := s.console.RestaurantOrders(ctx, period.Today(), unitIDs)
	if err != nil {
		return nil, err
	}

	type counter struct{ withPhone, total int }
	counters := make(map[int64]*counter)
	for _, order := range orders {
		id, ok := idByName[order.UnitName]
		if !ok {
			return nil, perr.Parsef("orders report names unknown unit %q", order.UnitName)
		}
		c := counters[id]
		if c == nil {
			c = &counter{}
			counters[id] = c
		}
		c.total++
		if order.PhoneNumber != "" {
			c.withPhone++
		}
	}

	out := make([]UnitRestaurantStatistics, 0, len(units))
	for _, unit := range units {
		row := UnitRestaurantStatistics{UnitID: unit.ID}
		if c, ok := counters[unit.ID]; ok {
			row.OrdersWithPhoneNumbersCount = c.withPhone
			row.TotalOrdersCount = c.total
			if c.total != 0 {
				row.OrdersWithPhoneNumbersPercent = int(math.Round(100 * float64(c.withPhone) / float64(c.total)))
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// UsedPromoCodes lists every promo-code redemption in the period
func (s *Service) UsedPromoCodes(ctx context.Context, p period.Period, unitIDs []int64) ([]exportservice.UsedPromoCode, error) {
	workbook, err := s.export.PromoCodesWorkbook(ctx, p, unitIDs)
	if err != nil {
		return nil, err
	}
	return exportservice.ParseUsedPromoCodes(workbook)
}
