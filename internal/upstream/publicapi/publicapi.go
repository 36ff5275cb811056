// Package publicapi adapts the public reporting API: per-unit JSON
// documents with locale-free machine numbers
package publicapi

import (
	"context"
	"fmt"
	"time"

	"opstats/internal/core/batch"
	"opstats/internal/upstream/httpx"

	perr "opstats/internal/platform/errors"
)

// OperationalStatistics is one time window's worth of sales counters
type OperationalStatistics struct {
	StationaryRevenue    int64   `json:"stationaryRevenue"`
	StationaryOrderCount int64   `json:"stationaryOrderCount"`
	DeliveryRevenue      int64   `json:"deliveryRevenue"`
	DeliveryOrderCount   int64   `json:"deliveryOrderCount"`
	Revenue              int64   `json:"revenue"`
	OrderCount           int64   `json:"orderCount"`
	AvgCheck             float64 `json:"avgCheck"`
}

// UnitOperationalStatistics is the per-unit document: today's counters
// next to several comparison windows
type UnitOperationalStatistics struct {
	UnitID               int64                 `json:"unitId"`
	Date                 time.Time             `json:"date"`
	Today                OperationalStatistics `json:"today"`
	WeekBefore           OperationalStatistics `json:"weekBefore"`
	Yesterday            OperationalStatistics `json:"yesterday"`
	YesterdayToThisTime  OperationalStatistics `json:"yesterdayToThisTime"`
	WeekBeforeToThisTime OperationalStatistics `json:"weekBeforeToThisTime"`
}

// Client talks to the public reporting API
type Client struct {
	http *httpx.Client
}

// New builds a client rooted at base, e.g. "https://host/ru/api/v1"
func New(http *httpx.Client) *Client { return &Client{http: http} }

// OperationalStatisticsForTodayAndWeekBefore fetches one unit's
// document. Any non-2xx reply is that unit's failure, not the batch's
func (c *Client) OperationalStatisticsForTodayAndWeekBefore(
	ctx context.Context,
	unitID int64,
) (UnitOperationalStatistics, error) {
	var out UnitOperationalStatistics

	path := fmt.Sprintf("/OperationalStatisticsForTodayAndWeekBefore/%d", unitID)
	resp, err := c.http.Get(ctx, path, nil)
	if err != nil {
		return out, batch.Fail(unitID, err)
	}
	if !resp.Success() {
		return out, batch.Fail(unitID, perr.Unavailablef("unit %d: status %d", unitID, resp.Status))
	}
	if err := httpx.DecodeJSON(resp.Body, &out); err != nil {
		return out, batch.Fail(unitID, err)
	}
	return out, nil
}
