package shiftmanager

import (
	"time"

	"github.com/google/uuid"
)

// OrderBrief is one row of the paginated failed-orders listing.
// It carries just enough to request the order's detail page
type OrderBrief struct {
	ID     uuid.UUID `json:"id"`
	Number string    `json:"number"`
	Price  int       `json:"price"`
	Type   string    `json:"type"`
}

// CanceledOrder is the assembled detail of one rejected order
type CanceledOrder struct {
	ID                 uuid.UUID  `json:"id"`
	UnitName           string     `json:"unit_name"`
	Number             string     `json:"number"`
	Type               string     `json:"type"`
	Price              int        `json:"price"`
	CreatedAt          time.Time  `json:"created_at"`
	CanceledAt         time.Time  `json:"canceled_at"`
	ReceiptPrintedAt   *time.Time `json:"receipt_printed_at"`
	CourierName        string     `json:"courier_name"`
	RejectedByUserName string     `json:"rejected_by_user_name"`
}
