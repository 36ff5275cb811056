package api

import (
	"net/http"

	"opstats/internal/services/delivery"
	"opstats/internal/services/production"
	"opstats/internal/services/revenue"

	phttp "opstats/internal/platform/net/http"

	"opstats/internal/platform/net/http/bind"
)

func (m *Module) handleRevenue(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		unitIDs, err := bind.QueryInt64s(r, "unit_ids", maxUnits)
		if err != nil {
			return nil, err
		}
		svc := revenue.New(m.publicAPI(), m.store, m.cfg.Width)
		return svc.Statistics(r.Context(), unitIDs)
	})(w, r)
}

func (m *Module) handleProductivityBalance(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		units, err := bind.QueryUUIDs(r, "unit_uuids", maxUnits)
		if err != nil {
			return nil, err
		}
		api, err := m.dodoAPI(r)
		if err != nil {
			return nil, err
		}
		return production.New(api).ProductivityBalance(r.Context(), units)
	})(w, r)
}

func (m *Module) handleRestaurantCookingTime(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		units, err := bind.QueryUUIDs(r, "unit_uuids", maxUnits)
		if err != nil {
			return nil, err
		}
		api, err := m.dodoAPI(r)
		if err != nil {
			return nil, err
		}
		return production.New(api).RestaurantCookingTime(r.Context(), units)
	})(w, r)
}

func (m *Module) handleTotalCookingTime(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		units, err := bind.QueryUUIDs(r, "unit_uuids", maxUnits)
		if err != nil {
			return nil, err
		}
		api, err := m.dodoAPI(r)
		if err != nil {
			return nil, err
		}
		return production.New(api).TotalCookingTime(r.Context(), units)
	})(w, r)
}

func (m *Module) handleHeatedShelfTime(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		units, err := bind.QueryUUIDs(r, "unit_uuids", maxUnits)
		if err != nil {
			return nil, err
		}
		api, err := m.dodoAPI(r)
		if err != nil {
			return nil, err
		}
		return production.New(api).HeatedShelfTime(r.Context(), units)
	})(w, r)
}

func (m *Module) handleDeliverySpeed(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		units, err := bind.QueryUUIDs(r, "unit_uuids", maxUnits)
		if err != nil {
			return nil, err
		}
		api, err := m.dodoAPI(r)
		if err != nil {
			return nil, err
		}
		return delivery.New(api).Speed(r.Context(), units)
	})(w, r)
}

func (m *Module) handleDeliveryProductivity(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		units, err := bind.QueryUUIDs(r, "unit_uuids", maxUnits)
		if err != nil {
			return nil, err
		}
		api, err := m.dodoAPI(r)
		if err != nil {
			return nil, err
		}
		return delivery.New(api).Productivity(r.Context(), units)
	})(w, r)
}

func (m *Module) handleBeingLateCertificates(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		units, err := bind.QueryUUIDs(r, "unit_uuids", maxUnits)
		if err != nil {
			return nil, err
		}
		api, err := m.dodoAPI(r)
		if err != nil {
			return nil, err
		}
		return delivery.New(api).BeingLateCertificates(r.Context(), units)
	})(w, r)
}

func (m *Module) handleTripsWithOneOrder(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		unitIDs, err := bind.QueryInt64s(r, "unit_ids", maxUnits)
		if err != nil {
			return nil, err
		}
		console, err := m.officeManager(r)
		if err != nil {
			return nil, err
		}
		return delivery.TripsWithOneOrder(r.Context(), console, unitIDs)
	})(w, r)
}
