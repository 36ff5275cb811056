package api

import (
	"net/http"
	"time"

	"opstats/internal/core/period"
	"opstats/internal/services/stopsales"

	phttp "opstats/internal/platform/net/http"

	"opstats/internal/platform/net/http/bind"

	perr "opstats/internal/platform/errors"
)

// queryPeriod reads an optional start/end pair, defaulting to today.
// Stamps are zoneless and interpreted in the reporting zone, same as
// the upstreams render them
func queryPeriod(r *http.Request) (period.Period, error) {
	rawStart := r.URL.Query().Get("start")
	rawEnd := r.URL.Query().Get("end")
	if rawStart == "" && rawEnd == "" {
		return period.Today(), nil
	}
	if rawStart == "" || rawEnd == "" {
		return period.Period{}, perr.ValidationErrf("start and end must come together")
	}

	start, err := time.ParseInLocation(period.APITimestamp, rawStart, period.Moscow)
	if err != nil {
		return period.Period{}, perr.ValidationErrf("start: %q is not a timestamp", rawStart)
	}
	end, err := time.ParseInLocation(period.APITimestamp, rawEnd, period.Moscow)
	if err != nil {
		return period.Period{}, perr.ValidationErrf("end: %q is not a timestamp", rawEnd)
	}
	return period.New(start, end), nil
}

func (m *Module) handleStopSalesByChannels(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		units, err := bind.QueryUUIDs(r, "unit_uuids", maxUnits)
		if err != nil {
			return nil, err
		}
		p, err := queryPeriod(r)
		if err != nil {
			return nil, err
		}
		api, err := m.dodoAPI(r)
		if err != nil {
			return nil, err
		}
		return stopsales.New(api, nil).Channels(r.Context(), p, units)
	})(w, r)
}

func (m *Module) handleStopSalesByIngredients(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		units, err := bind.QueryUUIDs(r, "unit_uuids", maxUnits)
		if err != nil {
			return nil, err
		}
		p, err := queryPeriod(r)
		if err != nil {
			return nil, err
		}
		api, err := m.dodoAPI(r)
		if err != nil {
			return nil, err
		}
		return stopsales.New(api, nil).Ingredients(r.Context(), p, units)
	})(w, r)
}

func (m *Module) handleStopSalesBySectors(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		unitIDs, err := bind.QueryInt64s(r, "unit_ids", maxUnits)
		if err != nil {
			return nil, err
		}
		p, err := queryPeriod(r)
		if err != nil {
			return nil, err
		}
		console, err := m.officeManager(r)
		if err != nil {
			return nil, err
		}
		return stopsales.New(nil, console).Sectors(r.Context(), p, unitIDs)
	})(w, r)
}

func (m *Module) handleStopSalesByStreets(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		unitIDs, err := bind.QueryInt64s(r, "unit_ids", maxUnits)
		if err != nil {
			return nil, err
		}
		p, err := queryPeriod(r)
		if err != nil {
			return nil, err
		}
		console, err := m.officeManager(r)
		if err != nil {
			return nil, err
		}
		return stopsales.New(nil, console).Streets(r.Context(), p, unitIDs)
	})(w, r)
}
