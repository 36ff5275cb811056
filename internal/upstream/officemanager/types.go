package officemanager

import "time"

// UnitIDAndName pairs the integer unit id with the display name the
// console uses in its tables
type UnitIDAndName struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// KitchenPartial is the kitchen operational panel for one unit
type KitchenPartial struct {
	UnitID                 int64   `json:"unit_id"`
	SalesPerLaborHourToday float64 `json:"sales_per_labor_hour_today"`
	FromWeekBeforePercent  int     `json:"from_week_before_percent"`
	TotalCookingTime       int     `json:"total_cooking_time"`
}

// DeliveryPartial is the delivery operational panel for one unit
type DeliveryPartial struct {
	UnitID                 int64 `json:"unit_id"`
	HeatedShelfOrdersCount int   `json:"heated_shelf_orders_count"`
	CouriersInQueueCount   int   `json:"couriers_in_queue_count"`
	CouriersOnShiftCount   int   `json:"couriers_on_shift_count"`
}

// StopSaleBySector is one row of the delivery-sector stop report
type StopSaleBySector struct {
	UnitName            string    `json:"unit_name"`
	Sector              string    `json:"sector"`
	StartedAt           time.Time `json:"started_at"`
	StaffNameWhoStopped string    `json:"staff_name_who_stopped"`
	StaffNameWhoResumed string    `json:"staff_name_who_resumed"`
}

// StopSaleByStreet is one row of the street stop report
type StopSaleByStreet struct {
	UnitName            string    `json:"unit_name"`
	Sector              string    `json:"sector"`
	Street              string    `json:"street"`
	StartedAt           time.Time `json:"started_at"`
	StaffNameWhoStopped string    `json:"staff_name_who_stopped"`
	StaffNameWhoResumed string    `json:"staff_name_who_resumed"`
}

// StockBalance is one ingredient line of a unit's stock table
type StockBalance struct {
	UnitID         int64   `json:"unit_id"`
	IngredientName string  `json:"ingredient_name"`
	StocksCount    float64 `json:"stocks_count"`
	StocksUnit     string  `json:"stocks_unit"`
	DaysLeft       int     `json:"days_left"`
}

// RestaurantOrder is one row of the dine-in orders report. PhoneNumber
// is empty when the guest ordered without the bonus program
type RestaurantOrder struct {
	UnitName    string    `json:"unit_name"`
	OrderNo     string    `json:"order_no"`
	OrderedAt   time.Time `json:"ordered_at"`
	PhoneNumber string    `json:"phone_number"`
}

// BeingLateCertificates is how many lateness certificates a unit
// issued over the report period
type BeingLateCertificates struct {
	UnitID   int64  `json:"unit_id"`
	UnitName string `json:"unit_name"`
	Count    int    `json:"count"`
}

// TripsWithOneOrder is one row of the delivery-statistics workbook:
// the share of courier trips carrying a single order
type TripsWithOneOrder struct {
	UnitName   string  `json:"unit_name"`
	Percentage float64 `json:"percentage"`
}
