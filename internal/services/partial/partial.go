// Package partial builds the live kitchen and delivery dashboards
// from the console's per-unit panel pages. Each unit's parse is cached
// under a day-bucket key with the hot-report TTL, so the dashboards
// lag the console by at most a minute
package partial

import (
	"context"

	"opstats/internal/core/batch"
	"opstats/internal/core/period"
	"opstats/internal/platform/cache"
	"opstats/internal/upstream/officemanager"
)

const (
	kitchenCacheKind  = "kitchen_statistics"
	deliveryCacheKind = "delivery_statistics"
)

// Console is the slice of the console API this service consumes
type Console interface {
	KitchenPartial(ctx context.Context, unitID int64) (officemanager.KitchenPartial, error)
	DeliveryPartial(ctx context.Context, unitID int64) (officemanager.DeliveryPartial, error)
}

// Service assembles partial-statistics batches
type Service struct {
	console Console
	store   cache.Store
	width   int
}

// New builds the service. width caps the fan-out, 0 means default
func New(console Console, store cache.Store, width int) *Service {
	return &Service{console: console, store: store, width: width}
}

// KitchenReport is the batch-shaped kitchen dashboard
type KitchenReport struct {
	Units        []officemanager.KitchenPartial `json:"units"`
	ErrorUnitIDs []int64                        `json:"error_unit_ids"`
}

// Kitchen fans out over the unit set, one panel page per unit
func (s *Service) Kitchen(ctx context.Context, unitIDs []int64) (KitchenReport, error) {
	bucket := period.Today().DayBucket()

	res, err := batch.Aggregate(ctx, unitIDs,
		func(ctx context.Context, id int64) (officemanager.KitchenPartial, error) {
			key := cache.Key(kitchenCacheKind, id, bucket)
			return cache.GetOrFetch(ctx, s.store, key, cache.DefaultTTL,
				func(ctx context.Context) (officemanager.KitchenPartial, error) {
					return s.console.KitchenPartial(ctx, id)
				})
		},
		batch.WithWidth(s.width),
	)
	if err != nil {
		return KitchenReport{}, err
	}

	report := KitchenReport{Units: res.Units, ErrorUnitIDs: res.Errors}
	if report.Units == nil {
		report.Units = []officemanager.KitchenPartial{}
	}
	if report.ErrorUnitIDs == nil {
		report.ErrorUnitIDs = []int64{}
	}
	return report, nil
}

// DeliveryReport is the batch-shaped delivery dashboard
type DeliveryReport struct {
	Units        []officemanager.DeliveryPartial `json:"units"`
	ErrorUnitIDs []int64                         `json:"error_unit_ids"`
}

// Delivery fans out over the unit set, one panel page per unit
func (s *Service) Delivery(ctx context.Context, unitIDs []int64) (DeliveryReport, error) {
	bucket := period.Today().DayBucket()

	res, err := batch.Aggregate(ctx, unitIDs,
		func(ctx context.Context, id int64) (officemanager.DeliveryPartial, error) {
			key := cache.Key(deliveryCacheKind, id, bucket)
			return cache.GetOrFetch(ctx, s.store, key, cache.DefaultTTL,
				func(ctx context.Context) (officemanager.DeliveryPartial, error) {
					return s.console.DeliveryPartial(ctx, id)
				})
		},
		batch.WithWidth(s.width),
	)
	if err != nil {
		return DeliveryReport{}, err
	}

	report := DeliveryReport{Units: res.Units, ErrorUnitIDs: res.Errors}
	if report.Units == nil {
		report.Units = []officemanager.DeliveryPartial{}
	}
	if report.ErrorUnitIDs == nil {
		report.ErrorUnitIDs = []int64{}
	}
	return report, nil
}
