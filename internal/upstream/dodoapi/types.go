package dodoapi

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"opstats/internal/core/calc"
	"opstats/internal/core/period"
	perr "opstats/internal/platform/errors"
)

// Timestamp handles the API's zoneless "2006-01-02T15:04:05" stamps,
// with RFC 3339 accepted as a fallback
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(raw []byte) error {
	s := strings.Trim(string(raw), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{period.APITimestamp, time.RFC3339} {
		if parsed, err := time.ParseInLocation(layout, s, period.Moscow); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return perr.Parsef("bad timestamp %q", s)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(period.APITimestamp) + `"`), nil
}

// Sales channels as the API spells them
const (
	SalesChannelDineIn   = "Dine-in"
	SalesChannelTakeaway = "Takeaway"
	SalesChannelDelivery = "Delivery"
)

// Channel stop types
const (
	ChannelStopTypeComplete    = "Complete"
	ChannelStopTypeRedirection = "Redirection"
)

// UnitProductivityStatistics is one unit's kitchen productivity window
type UnitProductivityStatistics struct {
	UnitID                     uuid.UUID `json:"unitId"`
	UnitName                   string    `json:"unitName"`
	LaborHours                 int64     `json:"laborHours"`
	Sales                      float64   `json:"sales"`
	SalesPerLaborHour          float64   `json:"salesPerLaborHour"`
	ProductsPerLaborHour       float64   `json:"productsPerLaborHour"`
	AvgHeatedShelfTime         int64     `json:"avgHeatedShelfTime"`
	OrdersPerCourierLabourHour float64   `json:"ordersPerCourierLabourHour"`
	KitchenSpeedPercentage     float64   `json:"kitchenSpeedPercentage"`
}

// UnitDeliveryStatistics is one unit's delivery window
type UnitDeliveryStatistics struct {
	UnitID                          uuid.UUID `json:"unitId"`
	UnitName                        string    `json:"unitName"`
	AvgCookingTime                  int64     `json:"avgCookingTime"`
	AvgDeliveryOrderFulfillmentTime int64     `json:"avgDeliveryOrderFulfillmentTime"`
	AvgHeatedShelfTime              int64     `json:"avgHeatedShelfTime"`
	AvgOrderTripTime                int64     `json:"avgOrderTripTime"`
	CouriersShiftsDuration          int64     `json:"couriersShiftsDuration"`
	DeliveryOrdersCount             int64     `json:"deliveryOrdersCount"`
	DeliverySales                   int64     `json:"deliverySales"`
	LateOrdersCount                 int64     `json:"lateOrdersCount"`
	OrdersWithCourierAppCount       int64     `json:"ordersWithCourierAppCount"`
	TripsCount                      int64     `json:"tripsCount"`
	TripsDuration                   int64     `json:"tripsDuration"`
}

// OrdersPerLaborHour is the unit's courier throughput for the window
func (s UnitDeliveryStatistics) OrdersPerLaborHour() float64 {
	return calc.OrdersPerLaborHour(float64(s.DeliveryOrdersCount), s.CouriersShiftsDuration)
}

// StopSale is the fields shared by both stop-sale flavors
type StopSale struct {
	ID              uuid.UUID  `json:"id"`
	UnitID          uuid.UUID  `json:"unitId"`
	UnitName        string     `json:"unitName"`
	Reason          string     `json:"reason"`
	StartedAt       Timestamp  `json:"startedAt"`
	EndedAt         *Timestamp `json:"endedAt"`
	StoppedByUserID uuid.UUID  `json:"stoppedByUserId"`
	ResumedByUserID *uuid.UUID `json:"resumedByUserId"`
}

// Resumed reports whether the stop has an end
func (s StopSale) Resumed() bool { return s.EndedAt != nil && !s.EndedAt.IsZero() }

// Interval converts the stop into a calc window
func (s StopSale) Interval() calc.Interval {
	iv := calc.Interval{StartedAt: s.StartedAt.Time}
	if s.Resumed() {
		end := s.EndedAt.Time
		iv.EndedAt = &end
	}
	return iv
}

// StopSaleBySalesChannels is a stop scoped to one sales channel
type StopSaleBySalesChannels struct {
	StopSale
	SalesChannelName string `json:"salesChannelName"`
	ChannelStopType  string `json:"channelStopType"`
}

// StopSaleByIngredients is a stop scoped to one ingredient
type StopSaleByIngredients struct {
	StopSale
	IngredientName string `json:"ingredientName"`
}

// OrderHandoverTime is one tracked order's phase timings
type OrderHandoverTime struct {
	UnitID               uuid.UUID `json:"unitId"`
	UnitName             string    `json:"unitName"`
	OrderID              uuid.UUID `json:"orderId"`
	OrderNumber          string    `json:"orderNumber"`
	SalesChannel         string    `json:"salesChannel"`
	OrderTrackingStartAt Timestamp `json:"orderTrackingStartAt"`
	TrackingPendingTime  int64     `json:"trackingPendingTime"`
	CookingTime          int64     `json:"cookingTime"`
	HeatedShelfTime      int64     `json:"heatedShelfTime"`
}

// LateDeliveryVoucher is one compensation voucher for a late order
type LateDeliveryVoucher struct {
	OrderID                    uuid.UUID  `json:"orderId"`
	OrderNumber                string     `json:"orderNumber"`
	OrderAcceptedAtLocal       Timestamp  `json:"orderAcceptedAtLocal"`
	UnitID                     uuid.UUID  `json:"unitId"`
	PredictedDeliveryTimeLocal Timestamp  `json:"predictedDeliveryTimeLocal"`
	OrderFulfilmentFlagAtLocal *Timestamp `json:"orderFulfilmentFlagAtLocal"`
	DeliveryDeadlineLocal      Timestamp  `json:"deliveryDeadlineLocal"`
	IssuerName                 *string    `json:"issuerName"`
	CourierStaffID             *uuid.UUID `json:"courierStaffId"`
}
