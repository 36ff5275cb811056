// Package stocks builds the running-low ingredient report from the
// console stock tables, one page per unit
package stocks

import (
	"context"

	"opstats/internal/core/batch"
	"opstats/internal/upstream/officemanager"
)

// Console is the slice of the console API this service consumes
type Console interface {
	StockBalance(ctx context.Context, unitID int64) ([]officemanager.StockBalance, error)
}

// Service assembles stock reports
type Service struct {
	console Console
	width   int
}

// New builds the service. width caps the fan-out, 0 means default
func New(console Console, width int) *Service {
	return &Service{console: console, width: width}
}

// Report is the batch-shaped stocks response. Units holds ingredient
// rows, not unit rows: one unit contributes as many rows as it has
// ingredients below the threshold
type Report struct {
	Units        []officemanager.StockBalance `json:"units"`
	ErrorUnitIDs []int64                      `json:"error_unit_ids"`
}

// RunningOut fans out over the unit set and keeps the rows with at
// most daysLeftThreshold days of stock remaining
func (s *Service) RunningOut(ctx context.Context, unitIDs []int64, daysLeftThreshold int) (Report, error) {
	res, err := batch.Aggregate(ctx, unitIDs, s.console.StockBalance, batch.WithWidth(s.width))
	if err != nil {
		return Report{}, err
	}

	report := Report{Units: []officemanager.StockBalance{}, ErrorUnitIDs: res.Errors}
	if report.ErrorUnitIDs == nil {
		report.ErrorUnitIDs = []int64{}
	}
	for _, rows := range res.Units {
		for _, row := range rows {
			if row.DaysLeft <= daysLeftThreshold {
				report.Units = append(report.Units, row)
			}
		}
	}
	return report, nil
}
