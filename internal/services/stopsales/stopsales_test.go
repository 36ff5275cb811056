package stopsales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"opstats/internal/core/period"
	"opstats/internal/upstream/dodoapi"
	"opstats/internal/upstream/officemanager"
)

var (
	unitA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	unitB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

type fakeAPI struct {
	channels    []dodoapi.StopSaleBySalesChannels
	ingredients []dodoapi.StopSaleByIngredients
}

func (f *fakeAPI) StopSalesBySalesChannels(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.StopSaleBySalesChannels, error) {
	return f.channels, nil
}

func (f *fakeAPI) StopSalesByIngredients(ctx context.Context, p period.Period, units []uuid.UUID) ([]dodoapi.StopSaleByIngredients, error) {
	return f.ingredients, nil
}

type fakeConsole struct {
	sectors []officemanager.StopSaleBySector
	streets []officemanager.StopSaleByStreet
}

func (f *fakeConsole) StopSalesBySectors(ctx context.Context, p period.Period, unitIDs []int64) ([]officemanager.StopSaleBySector, error) {
	return f.sectors, nil
}

func (f *fakeConsole) StopSalesByStreets(ctx context.Context, p period.Period, unitIDs []int64) ([]officemanager.StopSaleByStreet, error) {
	return f.streets, nil
}

func TestChannelsGroupsPerUnit(t *testing.T) {
	api := &fakeAPI{channels: []dodoapi.StopSaleBySalesChannels{
		{StopSale: dodoapi.StopSale{UnitID: unitA, Reason: "first"}},
		{StopSale: dodoapi.StopSale{UnitID: unitA, Reason: "second"}},
	}}
	svc := New(api, &fakeConsole{})

	rows, err := svc.Channels(context.Background(), period.Today(), []uuid.UUID{unitA, unitB})
	if err != nil {
		t.Fatalf("channels: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected a group per requested unit, got %d", len(rows))
	}
	if len(rows[0].Stops) != 2 || rows[0].Stops[0].Reason != "first" {
		t.Fatalf("unexpected unit A group: %+v", rows[0])
	}
	if rows[1].Stops == nil || len(rows[1].Stops) != 0 {
		t.Fatalf("expected an empty (not nil) group for unit B, got %+v", rows[1])
	}
}

func TestIngredientsGroupsPerUnit(t *testing.T) {
	api := &fakeAPI{ingredients: []dodoapi.StopSaleByIngredients{
		{StopSale: dodoapi.StopSale{UnitID: unitB}, IngredientName: "Моцарелла"},
	}}
	svc := New(api, &fakeConsole{})

	rows, err := svc.Ingredients(context.Background(), period.Today(), []uuid.UUID{unitA, unitB})
	if err != nil {
		t.Fatalf("ingredients: %v", err)
	}
	if len(rows[0].Stops) != 0 {
		t.Fatalf("expected no stops for unit A, got %+v", rows[0])
	}
	if len(rows[1].Stops) != 1 || rows[1].Stops[0].IngredientName != "Моцарелла" {
		t.Fatalf("unexpected unit B group: %+v", rows[1])
	}
}

func TestSectorsPassThrough(t *testing.T) {
	console := &fakeConsole{sectors: []officemanager.StopSaleBySector{
		{UnitName: "Москва 4-1", Sector: "Север", StartedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, period.Moscow)},
	}}
	svc := New(&fakeAPI{}, console)

	rows, err := svc.Sectors(context.Background(), period.Today(), []int64{389})
	if err != nil {
		t.Fatalf("sectors: %v", err)
	}
	if len(rows) != 1 || rows[0].Sector != "Север" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
