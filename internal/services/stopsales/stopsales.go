// Package stopsales surfaces halted-sales intervals from two upstream
// generations: the JSON API scoped by channel or ingredient, and the
// console reports scoped by delivery sector or street
package stopsales

import (
	"context"

	"github.com/google/uuid"

	"opstats/internal/core/batch"
	"opstats/internal/core/period"
	"opstats/internal/upstream/dodoapi"
	"opstats/internal/upstream/officemanager"
)

// API is the JSON side of the stop-sale reports
type API interface {
	StopSalesBySalesChannels(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.StopSaleBySalesChannels, error)
	StopSalesByIngredients(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.StopSaleByIngredients, error)
}

// Console is the HTML side of the stop-sale reports
type Console interface {
	StopSalesBySectors(ctx context.Context, p period.Period, unitIDs []int64) ([]officemanager.StopSaleBySector, error)
	StopSalesByStreets(ctx context.Context, p period.Period, unitIDs []int64) ([]officemanager.StopSaleByStreet, error)
}

// Service assembles stop-sale reports
type Service struct {
	api     API
	console Console
}

// New builds the service
func New(api API, console Console) *Service {
	return &Service{api: api, console: console}
}

// UnitStopSalesByChannels groups one unit's channel stops
type UnitStopSalesByChannels struct {
	UnitID uuid.UUID                         `json:"unit_uuid"`
	Stops  []dodoapi.StopSaleBySalesChannels `json:"stops"`
}

// Channels fetches channel stops for the period and groups them per
// requested unit. A unit with no stops gets an empty group
func (s *Service) Channels(ctx context.Context, p period.Period, units []uuid.UUID) ([]UnitStopSalesByChannels, error) {
	stops, err := s.api.StopSalesBySalesChannels(ctx, p, units)
	if err != nil {
		return nil, err
	}

	byUnit := batch.GroupBy(stops,
		func(s dodoapi.StopSaleBySalesChannels) uuid.UUID { return s.UnitID })

	out := make([]UnitStopSalesByChannels, 0, len(units))
	for _, id := range units {
		group := byUnit[id]
		if group == nil {
			group = []dodoapi.StopSaleBySalesChannels{}
		}
		out = append(out, UnitStopSalesByChannels{UnitID: id, Stops: group})
	}
	return out, nil
}

// UnitStopSalesByIngredients groups one unit's ingredient stops
type UnitStopSalesByIngredients struct {
	UnitID uuid.UUID                       `json:"unit_uuid"`
	Stops  []dodoapi.StopSaleByIngredients `json:"stops"`
}

// Ingredients fetches ingredient stops for the period and groups them
// per requested unit
func (s *Service) Ingredients(ctx context.Context, p period.Period, units []uuid.UUID) ([]UnitStopSalesByIngredients, error) {
	stops, err := s.api.StopSalesByIngredients(ctx, p, units)
	if err != nil {
		return nil, err
	}

	byUnit := batch.GroupBy(stops,
		func(s dodoapi.StopSaleByIngredients) uuid.UUID { return s.UnitID })

	out := make([]UnitStopSalesByIngredients, 0, len(units))
	for _, id := range units {
		group := byUnit[id]
		if group == nil {
			group = []dodoapi.StopSaleByIngredients{}
		}
		out = append(out, UnitStopSalesByIngredients{UnitID: id, Stops: group})
	}
	return out, nil
}

// Sectors fetches the delivery-sector stop report
func (s *Service) Sectors(ctx context.Context, p period.Period, unitIDs []int64) ([]officemanager.StopSaleBySector, error) {
	return s.console.StopSalesBySectors(ctx, p, unitIDs)
}

// Streets fetches the street stop report
func (s *Service) Streets(ctx context.Context, p period.Period, unitIDs []int64) ([]officemanager.StopSaleByStreet, error) {
	return s.console.StopSalesByStreets(ctx, p, unitIDs)
}
