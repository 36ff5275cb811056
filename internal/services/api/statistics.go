package api

import (
	"net/http"

	"opstats/internal/services/delivery"
	"opstats/internal/services/partial"
	"opstats/internal/upstream/officemanager"

	phttp "opstats/internal/platform/net/http"

	"opstats/internal/platform/net/http/bind"
)

func (m *Module) handleKitchenStatistics(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		unitIDs, err := bind.QueryInt64s(r, "unit_ids", maxUnits)
		if err != nil {
			return nil, err
		}
		console, err := m.officeManager(r)
		if err != nil {
			return nil, err
		}
		return partial.New(console, m.store, m.cfg.Width).Kitchen(r.Context(), unitIDs)
	})(w, r)
}

func (m *Module) handleDeliveryStatistics(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandlerNoBody(func(r *http.Request) (any, error) {
		unitIDs, err := bind.QueryInt64s(r, "unit_ids", maxUnits)
		if err != nil {
			return nil, err
		}
		console, err := m.officeManager(r)
		if err != nil {
			return nil, err
		}
		return partial.New(console, m.store, m.cfg.Width).Delivery(r.Context(), unitIDs)
	})(w, r)
}

type beingLateCertificatesIn struct {
	Units []unitIDAndNameIn `json:"units" validate:"required,min=1,max=30,dive"`
}

func (m *Module) handleBeingLateCertificatesStatistics(w http.ResponseWriter, r *http.Request) {
	phttp.JSONHandler(func(r *http.Request, in beingLateCertificatesIn) (any, error) {
		console, err := m.officeManager(r)
		if err != nil {
			return nil, err
		}
		units := make([]officemanager.UnitIDAndName, len(in.Units))
		for i, unit := range in.Units {
			units[i] = officemanager.UnitIDAndName{ID: unit.ID, Name: unit.Name}
		}
		return delivery.ConsoleCertificates(r.Context(), console, m.store, units, m.cfg.Width)
	})(w, r)
}
