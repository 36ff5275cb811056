// Package dodoapi adapts the bearer-authenticated statistics API.
// All operations take a set of unit UUIDs and a period; 400 and 401
// replies are request-fatal because they mean the caller's parameters
// or token are broken, not that data is missing
package dodoapi

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"opstats/internal/core/period"
	"opstats/internal/upstream/httpx"

	perr "opstats/internal/platform/errors"
)

// Client talks to the statistics API on behalf of one token
type Client struct {
	http *httpx.Client
}

// New wraps an httpx client already carrying the bearer token
func New(http *httpx.Client) *Client { return &Client{http: http} }

// StringifyUUIDs joins unit UUIDs the way the API's units param wants
// them: hex without dashes, comma separated
func StringifyUUIDs(ids []uuid.UUID) string {
	hexes := make([]string, len(ids))
	for i, id := range ids {
		hexes[i] = strings.ReplaceAll(id.String(), "-", "")
	}
	return strings.Join(hexes, ",")
}

func unitsParams(ids []uuid.UUID, p period.Period, layout string) url.Values {
	return url.Values{
		"units": []string{StringifyUUIDs(ids)},
		"from":  []string{p.Start.Format(layout)},
		"to":    []string{p.End.Format(layout)},
	}
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, badRequestMsg string, dst any) error {
	resp, err := c.http.Get(ctx, path, q)
	if err != nil {
		return err
	}
	switch {
	case resp.Status == 400:
		return perr.ValidationErrf("%s", badRequestMsg)
	case resp.Status == 401:
		return perr.Unauthorizedf("token rejected")
	case !resp.Success():
		return perr.Unavailablef("%s: status %d", path, resp.Status)
	}
	return httpx.DecodeJSON(resp.Body, dst)
}

// ProductivityStatistics requires hour-rounded bounds, so the period's
// end is pushed to the next hour boundary before formatting
func (c *Client) ProductivityStatistics(
	ctx context.Context,
	p period.Period,
	units []uuid.UUID,
) ([]UnitProductivityStatistics, error) {
	q := url.Values{
		"units": []string{StringifyUUIDs(units)},
		"from":  []string{p.Start.Format(period.APIHourStamp)},
		"to":    []string{period.RoundToHours(p.End).Format(period.APIHourStamp)},
	}
	var envelope struct {
		ProductivityStatistics []UnitProductivityStatistics `json:"productivityStatistics"`
	}
	err := c.getJSON(ctx, "/production/productivity", q,
		"from or to parameter is missing or not rounded to hour", &envelope)
	return envelope.ProductivityStatistics, err
}

// DeliveryStatistics fetches the delivery window for the unit set
func (c *Client) DeliveryStatistics(
	ctx context.Context,
	p period.Period,
	units []uuid.UUID,
) ([]UnitDeliveryStatistics, error) {
	var envelope struct {
		UnitsStatistics []UnitDeliveryStatistics `json:"unitsStatistics"`
	}
	err := c.getJSON(ctx, "/delivery/statistics/", unitsParams(units, p, period.APITimestamp),
		"from or to parameter is missing", &envelope)
	return envelope.UnitsStatistics, err
}

// StopSalesBySalesChannels fetches channel-scoped stops for the period
func (c *Client) StopSalesBySalesChannels(
	ctx context.Context,
	p period.Period,
	units []uuid.UUID,
) ([]StopSaleBySalesChannels, error) {
	var envelope struct {
		StopSales []StopSaleBySalesChannels `json:"stopSalesBySalesChannels"`
	}
	err := c.getJSON(ctx, "/production/stop-sales-channels", unitsParams(units, p, period.APITimestamp),
		"from or to parameter is missing", &envelope)
	return envelope.StopSales, err
}

// StopSalesByIngredients fetches ingredient-scoped stops for the period
func (c *Client) StopSalesByIngredients(
	ctx context.Context,
	p period.Period,
	units []uuid.UUID,
) ([]StopSaleByIngredients, error) {
	var envelope struct {
		StopSales []StopSaleByIngredients `json:"stopSalesByIngredients"`
	}
	err := c.getJSON(ctx, "/production/stop-sales-ingredients", unitsParams(units, p, period.APITimestamp),
		"from or to parameter is missing", &envelope)
	return envelope.StopSales, err
}

// OrdersHandoverTime fetches per-order phase timings for the period
func (c *Client) OrdersHandoverTime(
	ctx context.Context,
	p period.Period,
	units []uuid.UUID,
) ([]OrderHandoverTime, error) {
	var envelope struct {
		OrdersHandoverTime []OrderHandoverTime `json:"ordersHandoverTime"`
	}
	err := c.getJSON(ctx, "/production/orders-handover-time", unitsParams(units, p, period.APITimestamp),
		"from or to parameter is missing", &envelope)
	return envelope.OrdersHandoverTime, err
}

const vouchersPageSize = 1000

// LateDeliveryVouchers walks the paginated voucher list to the end.
// Bounds are day stamps; the API pages with take/skip and flags the
// final page itself
func (c *Client) LateDeliveryVouchers(
	ctx context.Context,
	p period.Period,
	units []uuid.UUID,
) ([]LateDeliveryVoucher, error) {
	var all []LateDeliveryVoucher
	skip := 0
	for {
		q := url.Values{
			"units": []string{StringifyUUIDs(units)},
			"from":  []string{p.Start.Format("2006-01-02T00:00:00")},
			"to":    []string{p.End.Format("2006-01-02T00:00:00")},
			"take":  []string{strconv.Itoa(vouchersPageSize)},
			"skip":  []string{strconv.Itoa(skip)},
		}

		var page struct {
			Vouchers           []LateDeliveryVoucher `json:"vouchers"`
			IsEndOfListReached bool                  `json:"isEndOfListReached"`
		}
		if err := c.getJSON(ctx, "/delivery/vouchers", q, "from or to parameter is missing", &page); err != nil {
			return nil, err
		}
		all = append(all, page.Vouchers...)
		if page.IsEndOfListReached {
			return all, nil
		}
		skip += vouchersPageSize
	}
}
