// Package shiftmanager adapts the shift console's failed-order pages:
// a paginated listing plus one detail page per order
package shiftmanager

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"opstats/internal/core/period"
	"opstats/internal/upstream/httpx"

	perr "opstats/internal/platform/errors"
)

// Client talks to the shift console on behalf of one session
type Client struct {
	http *httpx.Client
}

// New wraps an httpx client already carrying the session cookies
func New(http *httpx.Client) *Client { return &Client{http: http} }

// CanceledOrdersBrief walks the failed-orders listing to its end.
// The listing signals "done" with an empty page, not a flag
func (c *Client) CanceledOrdersBrief(ctx context.Context, p period.Period) ([]OrderBrief, error) {
	var all []OrderBrief
	for page := 1; ; page++ {
		q := url.Values{
			"page":             []string{strconv.Itoa(page)},
			"date":             []string{p.End.Format("2006-01-02")},
			"orderStateFilter": []string{"Failure"},
		}
		resp, err := c.http.Get(ctx, "/Managment/ShiftManagment/PartialShiftOrders", q)
		if err != nil {
			return nil, err
		}
		if !resp.Success() {
			return nil, perr.Unavailablef("failed orders page %d: status %d", page, resp.Status)
		}
		orders, err := ParseOrdersBrief(string(resp.Body))
		if err != nil {
			return nil, err
		}
		if len(orders) == 0 {
			return all, nil
		}
		all = append(all, orders...)
	}
}

// OrderDetail fetches and assembles one canceled order
func (c *Client) OrderDetail(ctx context.Context, brief OrderBrief) (CanceledOrder, error) {
	q := url.Values{
		"orderUUId": []string{strings.ReplaceAll(brief.ID.String(), "-", "")},
	}
	resp, err := c.http.Get(ctx, "/Managment/ShiftManagment/Order", q)
	if err != nil {
		return CanceledOrder{}, err
	}
	if !resp.Success() {
		return CanceledOrder{}, perr.Unavailablef("order %s: status %d", brief.ID, resp.Status)
	}
	return ParseOrderDetail(string(resp.Body), brief)
}
