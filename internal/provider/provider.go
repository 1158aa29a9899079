// Package provider fetches the raw dashboard payloads from the remote
// inventory API or the reporting database.
package provider

import (
	"context"
	"errors"

	"github.com/shelf-inventory/shelf/internal/dashboard"
	"github.com/shelf-inventory/shelf/internal/query"
)

// Query keys served by every provider.
const (
	SalesDaily   query.Key = "sales.daily"
	SalesWeekly  query.Key = "sales.weekly"
	SalesMonthly query.Key = "sales.monthly"
	Products     query.Key = "products"
	Categories   query.Key = "categories"
	Brands       query.Key = "brands"
	Sellers      query.Key = "sellers"
	Purchases    query.Key = "purchases"
	ProfileSelf  query.Key = "profile.self"
)

// DashboardKeys lists every query the dashboard depends on.
var DashboardKeys = []query.Key{
	SalesDaily, SalesWeekly, SalesMonthly, Products, Categories, Brands, Sellers, Purchases,
}

var (
	ErrUnknownQuery = errors.New("provider: unknown query")
	ErrUnauthorized = errors.New("provider: unauthorized")
)

// Request identifies one read-only query on behalf of a user.
type Request struct {
	Key    query.Key
	UserID string
	Token  string
	// Fresh skips any cache in front of the provider.
	Fresh bool
}

// Provider resolves a query to its decoded JSON payload.
type Provider interface {
	Fetch(ctx context.Context, req Request) (any, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req Request) (any, error)

// Fetch implements Provider.
func (f ProviderFunc) Fetch(ctx context.Context, req Request) (any, error) {
	return f(ctx, req)
}

// SalesKey maps a time range onto its sales query.
func SalesKey(r dashboard.TimeRange) query.Key {
	switch r {
	case dashboard.RangeDaily:
		return SalesDaily
	case dashboard.RangeMonthly:
		return SalesMonthly
	default:
		return SalesWeekly
	}
}

// Snapshot assembles the dashboard snapshot from resolved query states. Only
// states that hold data contribute.
func Snapshot(states map[query.Key]query.State) dashboard.Snapshot {
	data := func(key query.Key) any {
		if st, ok := states[key]; ok && st.HasData {
			return st.Data
		}
		return nil
	}
	return dashboard.Snapshot{
		Sales: map[dashboard.TimeRange]any{
			dashboard.RangeDaily:   data(SalesDaily),
			dashboard.RangeWeekly:  data(SalesWeekly),
			dashboard.RangeMonthly: data(SalesMonthly),
		},
		Products:   data(Products),
		Categories: data(Categories),
		Brands:     data(Brands),
		Sellers:    data(Sellers),
		Purchases:  data(Purchases),
	}
}
