// Package officemanager adapts the management console. Everything it
// returns is rendered HTML (or an xlsx export); the parsers in this
// package turn those pages into typed records
package officemanager

import (
	"context"
	"net/url"
	"strconv"

	"opstats/internal/core/batch"
	"opstats/internal/core/period"
	"opstats/internal/upstream/httpx"

	perr "opstats/internal/platform/errors"
)

// Client talks to the console on behalf of one forwarded session
type Client struct {
	http *httpx.Client
}

// New wraps an httpx client already carrying the session cookies
func New(http *httpx.Client) *Client { return &Client{http: http} }

func unitIDsForm(ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out
}

func (c *Client) getUnitPage(ctx context.Context, path string, unitID int64) (string, error) {
	q := url.Values{"unitId": []string{strconv.FormatInt(unitID, 10)}}
	resp, err := c.http.Get(ctx, path, q)
	if err != nil {
		return "", err
	}
	if !resp.Success() {
		return "", perr.Unavailablef("%s unit %d: status %d", path, unitID, resp.Status)
	}
	return string(resp.Body), nil
}

// KitchenPartial fetches and parses one unit's kitchen panel.
// Any failure is that unit's failure
func (c *Client) KitchenPartial(ctx context.Context, unitID int64) (KitchenPartial, error) {
	html, err := c.getUnitPage(ctx, "/OfficeManager/OperationalStatistics/KitchenPartial", unitID)
	if err != nil {
		return KitchenPartial{}, batch.Fail(unitID, err)
	}
	out, err := ParseKitchenPartial(html, unitID)
	if err != nil {
		return KitchenPartial{}, batch.Fail(unitID, err)
	}
	return out, nil
}

// DeliveryPartial fetches and parses one unit's delivery panel
func (c *Client) DeliveryPartial(ctx context.Context, unitID int64) (DeliveryPartial, error) {
	html, err := c.getUnitPage(ctx, "/OfficeManager/OperationalStatistics/DeliveryWorkPartial", unitID)
	if err != nil {
		return DeliveryPartial{}, batch.Fail(unitID, err)
	}
	out, err := ParseDeliveryPartial(html, unitID)
	if err != nil {
		return DeliveryPartial{}, batch.Fail(unitID, err)
	}
	return out, nil
}

// StockBalance fetches and parses one unit's ingredient stock table
func (c *Client) StockBalance(ctx context.Context, unitID int64) ([]StockBalance, error) {
	html, err := c.getUnitPage(ctx, "/OfficeManager/StockBalance/Get", unitID)
	if err != nil {
		return nil, batch.Fail(unitID, err)
	}
	out, err := ParseStockBalance(html, unitID)
	if err != nil {
		return nil, batch.Fail(unitID, err)
	}
	return out, nil
}

func (c *Client) postReport(ctx context.Context, path string, form url.Values) (string, error) {
	resp, err := c.http.PostForm(ctx, path, form)
	if err != nil {
		return "", err
	}
	if !resp.Success() {
		return "", perr.Unavailablef("%s: status %d", path, resp.Status)
	}
	return string(resp.Body), nil
}

func stopSalesForm(p period.Period, unitIDs []int64, stopType int) url.Values {
	form := url.Values{
		"UnitsIds":  unitIDsForm(unitIDs),
		"stop_type": []string{strconv.Itoa(stopType)},
		"beginDate": []string{p.Start.Format(period.ConsoleDate)},
		"endDate":   []string{p.End.Format(period.ConsoleDate)},
	}
	for reason := 0; reason < 7; reason++ {
		form.Add("productOrIngredientStopReasons", strconv.Itoa(reason))
	}
	return form
}

// StopSalesBySectors fetches the delivery-sector stop report
func (c *Client) StopSalesBySectors(
	ctx context.Context,
	p period.Period,
	unitIDs []int64,
) ([]StopSaleBySector, error) {
	html, err := c.postReport(ctx, "/Reports/StopSaleStatistic/GetDeliverySectorsStopSaleReport",
		stopSalesForm(p, unitIDs, 4))
	if err != nil {
		return nil, err
	}
	return ParseStopSalesBySectors(html)
}

// StopSalesByStreets fetches the street stop report
func (c *Client) StopSalesByStreets(
	ctx context.Context,
	p period.Period,
	unitIDs []int64,
) ([]StopSaleByStreet, error) {
	html, err := c.postReport(ctx, "/Reports/StopSaleStatistic/GetDeliveryUnitStopSaleReport",
		stopSalesForm(p, unitIDs, 3))
	if err != nil {
		return nil, err
	}
	return ParseStopSalesByStreets(html)
}

// RestaurantOrders fetches the dine-in orders report for the unit set
func (c *Client) RestaurantOrders(
	ctx context.Context,
	p period.Period,
	unitIDs []int64,
) ([]RestaurantOrder, error) {
	form := url.Values{
		"filterType":   []string{"OrdersFromRestaurant"},
		"unitsIds":     unitIDsForm(unitIDs),
		"OrderSources": []string{"Restaurant"},
		"beginDate":    []string{p.Start.Format(period.ConsoleDate)},
		"endDate":      []string{p.End.Format(period.ConsoleDate)},
		"orderTypes":   []string{"Delivery", "Pickup", "Stationary"},
	}
	html, err := c.postReport(ctx, "/Reports/Orders/Get", form)
	if err != nil {
		return nil, err
	}
	return ParseRestaurantOrders(html)
}

// BeingLateCertificates fetches the lateness-certificate report for
// the unit set
func (c *Client) BeingLateCertificates(
	ctx context.Context,
	p period.Period,
	units []UnitIDAndName,
) ([]BeingLateCertificates, error) {
	if len(units) == 0 {
		return nil, nil
	}
	ids := make([]int64, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	form := url.Values{
		"unitsIds":  unitIDsForm(ids),
		"beginDate": []string{p.Start.Format(period.ConsoleDate)},
		"endDate":   []string{p.End.Format(period.ConsoleDate)},
	}
	html, err := c.postReport(ctx, "/Reports/BeingLateCertificates/Get", form)
	if err != nil {
		return nil, err
	}
	return ParseBeingLateCertificates(html, ids[0], units)
}

// DeliveryStatisticsExport downloads the delivery-statistics workbook
func (c *Client) DeliveryStatisticsExport(
	ctx context.Context,
	p period.Period,
	unitIDs []int64,
) ([]byte, error) {
	form := url.Values{
		"unitsIds":  unitIDsForm(unitIDs),
		"beginDate": []string{p.Start.Format(period.ConsoleDate)},
		"endDate":   []string{p.End.Format(period.ConsoleDate)},
	}
	resp, err := c.http.PostForm(ctx, "/Reports/DeliveryStatistic/Export", form)
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, perr.Unavailablef("delivery export: status %d", resp.Status)
	}
	return resp.Body, nil
}
