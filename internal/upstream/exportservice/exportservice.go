// Package exportservice adapts the spreadsheet export endpoint. The
// only consumed report is the used-promo-codes workbook
package exportservice

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"opstats/internal/core/period"
	"opstats/internal/upstream/httpx"

	perr "opstats/internal/platform/errors"
)

// UsedPromoCode is one redemption row of the promo-code workbook
type UsedPromoCode struct {
	UnitName           string    `json:"unit_name"`
	PromoCode          string    `json:"promo_code"`
	Event              string    `json:"event"`
	TypicalDescription string    `json:"typical_description"`
	OrderType          string    `json:"order_type"`
	OrderStatus        string    `json:"order_status"`
	OrderNo            string    `json:"order_no"`
	OrderedAt          time.Time `json:"ordered_at"`
	OrderPrice         float64   `json:"order_price"`
}

// Client talks to the export endpoint on behalf of one session
type Client struct {
	http *httpx.Client
}

// New wraps an httpx client already carrying the session cookies
func New(http *httpx.Client) *Client { return &Client{http: http} }

var orderSources = []string{
	"Telephone", "Site", "Restaurant", "DefectOrder",
	"Mobile", "Pizzeria", "Aggregator", "Kiosk",
}

// PromoCodesWorkbook downloads the used-promo-codes workbook for the
// unit set over the period
func (c *Client) PromoCodesWorkbook(
	ctx context.Context,
	p period.Period,
	unitIDs []int64,
) ([]byte, error) {
	form := url.Values{
		"OrderSources":    orderSources,
		"beginDate":       []string{p.Start.Format(period.ConsoleDate)},
		"endDate":         []string{p.End.Format(period.ConsoleDate)},
		"orderTypes":      []string{"Delivery", "Pickup", "Stationary"},
		"IsAllPromoCode":  []string{"true", "false"},
		"OnlyComposition": []string{"false"},
		"promoCode":       []string{""},
		"filterType":      []string{""},
	}
	for _, id := range unitIDs {
		form.Add("unitsIds", strconv.FormatInt(id, 10))
	}

	resp, err := c.http.PostForm(ctx, "/Reports/PromoCodeUsed/Export", form)
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, perr.Unavailablef("promo codes export: status %d", resp.Status)
	}
	return resp.Body, nil
}
