package api

import (
	"net/http"

	"opstats/internal/services/orders"
	"opstats/internal/services/stocks"
	"opstats/internal/upstream/officemanager"

	phttp "opstats/internal/platform/net/http"

	"opstats/internal/platform/net/http/bind"
)

func (m *Module) handleStocks(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		unitIDs, err := bind.QueryInt64s(r, "unit_ids", maxUnits)
		if err != nil {
			return nil, err
		}
		threshold, err := bind.QueryInt(r, "days_left_threshold")
		if err != nil {
			return nil, err
		}
		console, err := m.officeManager(r)
		if err != nil {
			return nil, err
		}
		return stocks.New(console, m.cfg.Width).RunningOut(r.Context(), unitIDs, threshold)
	})(w, r)
}

// unitIDAndNameIn is a unit reference as the caller supplies it
type unitIDAndNameIn struct {
	ID   int64  `json:"id" validate:"required,min=1"`
	Name string `json:"name" validate:"required"`
}

type cheatedOrdersIn struct {
	Units     []unitIDAndNameIn `json:"units" validate:"required,min=1,max=30,dive"`
	Threshold int               `json:"repeated_phone_number_count_threshold" validate:"required,min=1"`
}

func (m *Module) handleCheatedOrders(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandler(func(r *http.Request, in cheatedOrdersIn) (any, error) {
		console, err := m.officeManager(r)
		if err != nil {
			return nil, err
		}
		unitIDs := make([]int64, len(in.Units))
		for i, unit := range in.Units {
			unitIDs[i] = unit.ID
		}
		svc := m.ordersService(console, nil)
		return svc.Cheated(r.Context(), unitIDs, in.Threshold)
	})(w, r)
}

func (m *Module) handleCanceledOrders(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		shift, err := m.shiftManager(r)
		if err != nil {
			return nil, err
		}
		return orders.New(nil, shift, nil, m.cfg.Width).Canceled(r.Context())
	})(w, r)
}

type restaurantStatisticsIn struct {
	Units []unitIDAndNameIn `json:"units" validate:"required,min=1,max=30,dive"`
}

func (m *Module) handleRestaurantStatistics(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandler(func(r *http.Request, in restaurantStatisticsIn) (any, error) {
		console, err := m.officeManager(r)
		if err != nil {
			return nil, err
		}
		units := make([]officemanager.UnitIDAndName, len(in.Units))
		for i, unit := range in.Units {
			units[i] = officemanager.UnitIDAndName{ID: unit.ID, Name: unit.Name}
		}
		return m.ordersService(console, nil).RestaurantStatistics(r.Context(), units)
	})(w, r)
}

func (m *Module) handleUsedPromoCodes(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		unitIDs, err := bind.QueryInt64s(r, "unit_ids", maxUnits)
		if err != nil {
			return nil, err
		}
		p, err := queryPeriod(r)
		if err != nil {
			return nil, err
		}
		export, err := m.exportService(r)
		if err != nil {
			return nil, err
		}
		return m.ordersService(nil, export).UsedPromoCodes(r.Context(), p, unitIDs)
	})(w, r)
}

func (m *Module) ordersService(console orders.Console, export orders.Export) *orders.Service {
	return orders.New(console, nil, export, m.cfg.Width)
}
