// Package api mounts the report routes and builds the per-request
// upstream sessions. Credentials never live in the process: the bearer
// token and console cookies arrive on each request and travel into the
// upstream clients as opaque values
package api

import (
	"net/http"
	"strings"

	"opstats/internal/core/batch"
	"opstats/internal/platform/cache"
	"opstats/internal/platform/config"
	"opstats/internal/upstream/dodoapi"
	"opstats/internal/upstream/exportservice"
	"opstats/internal/upstream/httpx"
	"opstats/internal/upstream/officemanager"
	"opstats/internal/upstream/publicapi"
	"opstats/internal/upstream/shiftmanager"

	phttp "opstats/internal/platform/net/http"

	perr "opstats/internal/platform/errors"
)

// maxUnits bounds every unit set accepted at the boundary
const maxUnits = 30

// Config holds the upstream bases and the fan-out ceiling
type Config struct {
	PublicAPIBase     string
	DodoAPIBase       string
	OfficeManagerBase string
	ShiftManagerBase  string
	ExportServiceBase string

	Width int
}

// ConfigFromEnv reads the module config, defaulting to the production
// vendor hosts
func ConfigFromEnv(cfg config.Conf) Config {
	return Config{
		PublicAPIBase:     cfg.MayString("PUBLIC_API_BASE", "https://publicapi.dodopizza.ru/api/v1"),
		DodoAPIBase:       cfg.MayString("DODO_API_BASE", "https://api.dodois.io/dodopizza/ru"),
		OfficeManagerBase: cfg.MayString("OFFICE_MANAGER_BASE", "https://officemanager.dodopizza.ru"),
		ShiftManagerBase:  cfg.MayString("SHIFT_MANAGER_BASE", "https://shiftmanager.dodopizza.ru"),
		ExportServiceBase: cfg.MayString("EXPORT_SERVICE_BASE", "https://officemanager.dodopizza.ru"),
		Width:             cfg.MayInt("AGG_CONCURRENCY", batch.DefaultWidth),
	}
}

// Module wires services to routes
type Module struct {
	cfg   Config
	store cache.Store
}

// New builds the module
func New(cfg Config, store cache.Store) *Module {
	return &Module{cfg: cfg, store: store}
}

// Mount attaches every route under the given router
func (m *Module) Mount(r phttp.Router) {
	r.Get("/ping", phttp.JSONHandlerNoBody(func(*http.Request) (any, error) {
		return map[string]string{"status": "ok"}, nil
	}))

	r.Route("/reports", func(r phttp.Router) {
		r.Get("/revenue", m.handleRevenue)
		r.Get("/productivity-balance", m.handleProductivityBalance)
		r.Get("/restaurant-cooking-time", m.handleRestaurantCookingTime)
		r.Get("/total-cooking-time", m.handleTotalCookingTime)
		r.Get("/heated-shelf-time", m.handleHeatedShelfTime)
		r.Get("/delivery-speed", m.handleDeliverySpeed)
		r.Get("/delivery-productivity", m.handleDeliveryProductivity)
		r.Get("/being-late-certificates", m.handleBeingLateCertificates)
		r.Get("/trips-with-one-order", m.handleTripsWithOneOrder)
	})

	r.Route("/stop-sales", func(r phttp.Router) {
		r.Get("/channels", m.handleStopSalesByChannels)
		r.Get("/ingredients", m.handleStopSalesByIngredients)
		r.Get("/sectors", m.handleStopSalesBySectors)
		r.Get("/streets", m.handleStopSalesByStreets)
	})

	r.Get("/stocks/", m.handleStocks)

	r.Route("/orders", func(r phttp.Router) {
		r.Post("/cheated", m.handleCheatedOrders)
		r.Get("/canceled", m.handleCanceledOrders)
		r.Post("/restaurant", m.handleRestaurantStatistics)
		r.Get("/used-promo-codes", m.handleUsedPromoCodes)
	})

	r.Route("/statistics", func(r phttp.Router) {
		r.Get("/kitchen", m.handleKitchenStatistics)
		r.Get("/delivery", m.handleDeliveryStatistics)
		r.Post("/being-late-certificates", m.handleBeingLateCertificatesStatistics)
	})
}

// bearerToken extracts the forwarded statistics-API token
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", perr.Unauthorizedf("bearer token is required")
	}
	return token, nil
}

// consoleCookies extracts the forwarded console session cookies
func consoleCookies(r *http.Request) (string, error) {
	raw := r.Header.Get("Cookie")
	if raw == "" {
		return "", perr.Unauthorizedf("session cookies are required")
	}
	return raw, nil
}

func (m *Module) publicAPI() *publicapi.Client {
	return publicapi.New(httpx.New(m.cfg.PublicAPIBase))
}

func (m *Module) dodoAPI(r *http.Request) (*dodoapi.Client, error) {
	token, err := bearerToken(r)
	if err != nil {
		return nil, err
	}
	return dodoapi.New(httpx.New(m.cfg.DodoAPIBase, httpx.WithBearer(token))), nil
}

func (m *Module) officeManager(r *http.Request) (*officemanager.Client, error) {
	cookies, err := consoleCookies(r)
	if err != nil {
		return nil, err
	}
	return officemanager.New(httpx.New(m.cfg.OfficeManagerBase, httpx.WithCookies(cookies))), nil
}

func (m *Module) shiftManager(r *http.Request) (*shiftmanager.Client, error) {
	cookies, err := consoleCookies(r)
	if err != nil {
		return nil, err
	}
	return shiftmanager.New(httpx.New(m.cfg.ShiftManagerBase, httpx.WithCookies(cookies))), nil
}

func (m *Module) exportService(r *http.Request) (*exportservice.Client, error) {
	cookies, err := consoleCookies(r)
	if err != nil {
		return nil, err
	}
	return exportservice.New(httpx.New(m.cfg.ExportServiceBase, httpx.WithCookies(cookies))), nil
}
