package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/metrics"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

const DefaultQueryDebounce = 250 * time.Millisecond

// QueryResult is what subscribers see for one issued request. On failure
// Listings is empty, Err is set, and Stale carries the last successful
// listings so callers can keep showing them.
type QueryResult struct {
	Token    uint64                 `json:"token"`
	Listings []domain.ScoredListing `json:"listings"`
	Err      error                  `json:"-"`
	Stale    []domain.ScoredListing `json:"stale,omitempty"`
}

type QueryListener func(QueryResult)

type QueryOrchestratorConfig struct {
	Debounce time.Duration
	Listener QueryListener
	Logger   *zap.Logger
}

// QueryOrchestrator runs catalog reads. Run is the synchronous path; Request
// is the debounced path where only the latest issued request may publish.
type QueryOrchestrator struct {
	listings ports.ListingRepository
	compiler *FacetCompiler
	debounce time.Duration
	listener QueryListener
	logger   *zap.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc

	// deliverMu keeps listener calls in token order.
	deliverMu sync.Mutex

	mu       sync.Mutex
	latest   uint64
	timer    *time.Timer
	inflight context.CancelFunc
	current  QueryResult
	lastGood []domain.ScoredListing
	closed   bool
}

func NewQueryOrchestrator(listingRepo ports.ListingRepository, compiler *FacetCompiler, cfg QueryOrchestratorConfig) *QueryOrchestrator {
	if compiler == nil {
		compiler = NewFacetCompiler(defaultCatalogLimit)
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &QueryOrchestrator{
		listings:   listingRepo,
		compiler:   compiler,
		debounce:   cfg.Debounce,
		listener:   cfg.Listener,
		logger:     cfg.Logger,
		baseCtx:    ctx,
		baseCancel: cancel,
		current:    QueryResult{Listings: []domain.ScoredListing{}},
	}
}

// Run compiles the selection, applies the profile, reads the store and
// attaches goal progress. A store failure never yields a partial list.
func (o *QueryOrchestrator) Run(ctx context.Context, sel domain.FacetSelection, profile *domain.UserProfile) ([]domain.ScoredListing, error) {
	query := ApplyPersonalization(o.compiler.Compile(sel), sel, profile)

	started := time.Now()
	rows, err := o.listings.Find(ctx, query)
	if err != nil {
		metrics.CatalogQueries.WithLabelValues("error").Inc()
		metrics.CatalogQueryDuration.WithLabelValues("error").Observe(time.Since(started).Seconds())
		return nil, domain.NewStoreError("find listings", err)
	}
	metrics.CatalogQueries.WithLabelValues("ok").Inc()
	metrics.CatalogQueryDuration.WithLabelValues("ok").Observe(time.Since(started).Seconds())

	visible := rows[:0:0]
	for _, row := range rows {
		if row.IsPubliclyVisible() {
			visible = append(visible, row)
		}
	}
	return ScoreListings(visible, profile), nil
}

// Request schedules a debounced read and returns its token. Issuing a new
// request restarts the debounce window and cancels any read still in flight.
// After Close it returns 0 and schedules nothing.
func (o *QueryOrchestrator) Request(sel domain.FacetSelection, profile *domain.UserProfile) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return 0
	}

	o.latest++
	token := o.latest
	if o.timer != nil {
		o.timer.Stop()
	}
	if o.inflight != nil {
		o.inflight()
		o.inflight = nil
	}
	o.timer = time.AfterFunc(o.debounce, func() {
		o.execute(token, sel, profile)
	})
	return token
}

// Current returns the most recently published result.
func (o *QueryOrchestrator) Current() QueryResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.current
	out.Listings = append([]domain.ScoredListing{}, o.current.Listings...)
	if o.current.Stale != nil {
		out.Stale = append([]domain.ScoredListing(nil), o.current.Stale...)
	}
	return out
}

// Latest is the newest token handed out by Request.
func (o *QueryOrchestrator) Latest() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.latest
}

func (o *QueryOrchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	if o.timer != nil {
		o.timer.Stop()
	}
	if o.inflight != nil {
		o.inflight()
		o.inflight = nil
	}
	o.baseCancel()
}

func (o *QueryOrchestrator) execute(token uint64, sel domain.FacetSelection, profile *domain.UserProfile) {
	o.mu.Lock()
	if o.closed || token != o.latest {
		o.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(o.baseCtx)
	o.inflight = cancel
	o.mu.Unlock()
	defer cancel()

	listings, err := o.Run(ctx, sel, profile)
	o.publish(token, listings, err)
}

func (o *QueryOrchestrator) publish(token uint64, listings []domain.ScoredListing, err error) {
	o.deliverMu.Lock()
	defer o.deliverMu.Unlock()

	o.mu.Lock()
	if o.closed || token != o.latest {
		latest := o.latest
		o.mu.Unlock()
		metrics.CatalogResultsDropped.Inc()
		o.logger.Debug("dropping superseded catalog result",
			zap.Uint64("token", token),
			zap.Uint64("latest", latest),
		)
		return
	}

	result := QueryResult{Token: token}
	if err != nil {
		result.Listings = []domain.ScoredListing{}
		result.Err = err
		result.Stale = o.lastGood
		o.logger.Warn("catalog read failed", zap.Uint64("token", token), zap.Error(err))
	} else {
		result.Listings = listings
		o.lastGood = listings
	}
	o.current = result
	o.inflight = nil
	listener := o.listener
	o.mu.Unlock()

	if listener != nil {
		listener(result)
	}
}
