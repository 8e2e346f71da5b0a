package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/metrics"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

var ErrReviewerConflict = errors.New("moderator cannot approve own submission")

const defaultHistoryLimit = 50

// allowedTransitions lists the states each action may start from.
var allowedTransitions = map[domain.ModerationAction][]domain.ModerationState{
	domain.ModerationActionSubmit:    {domain.ModerationStateDraft},
	domain.ModerationActionApprove:   {domain.ModerationStatePending},
	domain.ModerationActionReject:    {domain.ModerationStatePending},
	domain.ModerationActionFeature:   {domain.ModerationStateApproved},
	domain.ModerationActionUnfeature: {domain.ModerationStateFeatured},
	domain.ModerationActionBan:       {domain.ModerationStatePending, domain.ModerationStateRejected, domain.ModerationStateApproved, domain.ModerationStateFeatured},
	domain.ModerationActionDelete:    {domain.ModerationStatePending, domain.ModerationStateRejected, domain.ModerationStateApproved, domain.ModerationStateFeatured},
}

func canTransition(action domain.ModerationAction, from domain.ModerationState) bool {
	for _, state := range allowedTransitions[action] {
		if state == from {
			return true
		}
	}
	return false
}

type ModerationConfig struct {
	AllowedCategories  []string
	ForbidSelfApproval bool
	Logger             *zap.Logger
}

type ModerationService struct {
	listings           ports.ListingRepository
	events             ports.ModerationEventRepository
	identity           ports.Identity
	allowedCategories  map[string]struct{}
	forbidSelfApproval bool
	logger             *zap.Logger
	now                func() time.Time
}

func NewModerationService(listingRepo ports.ListingRepository, eventRepo ports.ModerationEventRepository, identity ports.Identity, cfg ModerationConfig) *ModerationService {
	allowed := make(map[string]struct{}, len(cfg.AllowedCategories))
	for _, cat := range cfg.AllowedCategories {
		trimmed := strings.ToLower(strings.TrimSpace(cat))
		if trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{
		listings:           listingRepo,
		events:             eventRepo,
		identity:           identity,
		allowedCategories:  allowed,
		forbidSelfApproval: cfg.ForbidSelfApproval,
		logger:             logger,
		now:                time.Now,
	}
}

func (s *ModerationService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Submit stores a freshly built listing as pending and records the submit
// event. Used by the submission wizard.
func (s *ModerationService) Submit(ctx context.Context, authorID uuid.UUID, listing domain.Listing) (*domain.Listing, error) {
	if authorID == uuid.Nil {
		return nil, domain.ErrAuthenticationRequired
	}
	listing.AuthorID = authorID
	listing.IsApproved = false
	listing.IsFeatured = false
	listing.DeletedAt = nil
	if err := listing.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(listing.CategoryID); err != nil {
		return nil, err
	}

	created, err := s.listings.Insert(ctx, &listing)
	if err != nil {
		s.record(domain.ModerationActionSubmit, "error")
		if errors.Is(err, domain.ErrDuplicateSlug) {
			return nil, fmt.Errorf("insert listing %q: %w", listing.Slug, domain.ErrDuplicateSlug)
		}
		return nil, domain.NewStoreError("insert listing", err)
	}
	if err := s.appendEvent(ctx, domain.ModerationActionSubmit, authorID, created.ID, domain.EventDetail{
		"kind": string(created.Kind),
		"slug": created.Slug,
	}); err != nil {
		return nil, err
	}
	s.record(domain.ModerationActionSubmit, "ok")
	return created, nil
}

func (s *ModerationService) Approve(ctx context.Context, actorID, listingID uuid.UUID) (*domain.Listing, error) {
	approved := true
	return s.transition(ctx, transitionRequest{
		action:    domain.ModerationActionApprove,
		actorID:   actorID,
		listingID: listingID,
		patch:     domain.ListingPatch{IsApproved: &approved},
		guard: []domain.Predicate{
			domain.Eq(domain.FieldIsApproved, false),
			domain.IsNull(domain.FieldDeletedAt),
		},
	})
}

// Reject only writes an event; the listing row stays unapproved. The row is
// still touched under a guard so a concurrent approve wins cleanly.
func (s *ModerationService) Reject(ctx context.Context, actorID, listingID uuid.UUID, reason string) (*domain.Listing, error) {
	detail := domain.EventDetail{}
	if reason = strings.TrimSpace(reason); reason != "" {
		detail["reason"] = reason
	}
	return s.transition(ctx, transitionRequest{
		action:    domain.ModerationActionReject,
		actorID:   actorID,
		listingID: listingID,
		detail:    detail,
		guard: []domain.Predicate{
			domain.Eq(domain.FieldIsApproved, false),
			domain.IsNull(domain.FieldDeletedAt),
		},
	})
}

func (s *ModerationService) Feature(ctx context.Context, actorID, listingID uuid.UUID) (*domain.Listing, error) {
	featured := true
	return s.transition(ctx, transitionRequest{
		action:    domain.ModerationActionFeature,
		actorID:   actorID,
		listingID: listingID,
		patch:     domain.ListingPatch{IsFeatured: &featured},
		guard: []domain.Predicate{
			domain.Eq(domain.FieldIsApproved, true),
			domain.Eq(domain.FieldIsFeatured, false),
			domain.IsNull(domain.FieldDeletedAt),
		},
	})
}

func (s *ModerationService) Unfeature(ctx context.Context, actorID, listingID uuid.UUID) (*domain.Listing, error) {
	featured := false
	return s.transition(ctx, transitionRequest{
		action:    domain.ModerationActionUnfeature,
		actorID:   actorID,
		listingID: listingID,
		patch:     domain.ListingPatch{IsFeatured: &featured},
		guard: []domain.Predicate{
			domain.Eq(domain.FieldIsFeatured, true),
			domain.IsNull(domain.FieldDeletedAt),
		},
	})
}

// SoftDelete hides a listing for good. Authors may delete their own
// listings; moderators may delete any.
func (s *ModerationService) SoftDelete(ctx context.Context, actorID, listingID uuid.UUID) (*domain.Listing, error) {
	return s.transition(ctx, transitionRequest{
		action:      domain.ModerationActionDelete,
		actorID:     actorID,
		listingID:   listingID,
		allowAuthor: true,
		softDelete:  true,
		guard:       []domain.Predicate{domain.IsNull(domain.FieldDeletedAt)},
	})
}

// Ban is a moderator-only removal that carries a reason.
func (s *ModerationService) Ban(ctx context.Context, actorID, listingID uuid.UUID, reason string) (*domain.Listing, error) {
	detail := domain.EventDetail{}
	if reason = strings.TrimSpace(reason); reason != "" {
		detail["reason"] = reason
	}
	return s.transition(ctx, transitionRequest{
		action:     domain.ModerationActionBan,
		actorID:    actorID,
		listingID:  listingID,
		detail:     detail,
		softDelete: true,
		guard:      []domain.Predicate{domain.IsNull(domain.FieldDeletedAt)},
	})
}

// UpdateListing applies an author or moderator edit. Ownership is checked
// up front and again by the store at commit time, so an edit cannot land on
// a listing whose ownership changed in between.
func (s *ModerationService) UpdateListing(ctx context.Context, actorID, listingID uuid.UUID, patch domain.ListingPatch) (*domain.Listing, error) {
	if actorID == uuid.Nil {
		return nil, domain.ErrAuthenticationRequired
	}
	patch.IsApproved = nil
	patch.IsFeatured = nil

	listing, err := s.load(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.DeletedAt != nil {
		return nil, domain.ErrListingNotFound
	}
	isModerator, err := s.isModerator(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !isModerator && listing.AuthorID != actorID {
		return nil, domain.ErrForbidden
	}
	if patch.IsEmpty() {
		return listing, nil
	}

	merged := patch.Apply(*listing)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(merged.CategoryID); err != nil {
			return nil, err
		}
	}

	guard := []domain.Predicate{domain.IsNull(domain.FieldDeletedAt)}
	if !isModerator {
		guard = append(guard, domain.Eq(domain.FieldAuthorID, actorID))
	}
	updated, err := s.listings.Update(ctx, listingID, patch, guard)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: listing changed before the edit was saved", domain.ErrForbidden)
		}
		return nil, domain.NewStoreError("update listing", err)
	}
	s.logger.Info("listing updated",
		zap.String("listing_id", listingID.String()),
		zap.String("actor_id", actorID.String()),
		zap.Bool("moderator", isModerator),
	)
	return updated, nil
}

// State derives the current moderation state from the listing and its most
// recent event.
func (s *ModerationService) State(ctx context.Context, listingID uuid.UUID) (domain.ModerationState, error) {
	listing, err := s.load(ctx, listingID)
	if err != nil {
		return "", err
	}
	latest, err := s.latestEvent(ctx, listingID)
	if err != nil {
		return "", err
	}
	return domain.DeriveModerationState(*listing, latest), nil
}

// History returns the audit trail, newest first, to the author or a
// moderator.
func (s *ModerationService) History(ctx context.Context, actorID, listingID uuid.UUID, limit int) ([]domain.ModerationEvent, error) {
	if actorID == uuid.Nil {
		return nil, domain.ErrAuthenticationRequired
	}
	listing, err := s.load(ctx, listingID)
	if err != nil {
		return nil, err
	}
	isModerator, err := s.isModerator(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !isModerator && listing.AuthorID != actorID {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	events, err := s.events.ListByTarget(ctx, listingID, limit)
	if err != nil {
		return nil, domain.NewStoreError("list moderation events", err)
	}
	return events, nil
}

// Manage loads a listing for its author or a moderator regardless of its
// public visibility.
func (s *ModerationService) Manage(ctx context.Context, actorID, listingID uuid.UUID) (*domain.Listing, domain.ModerationState, error) {
	if actorID == uuid.Nil {
		return nil, "", domain.ErrAuthenticationRequired
	}
	listing, err := s.load(ctx, listingID)
	if err != nil {
		return nil, "", err
	}
	isModerator, err := s.isModerator(ctx, actorID)
	if err != nil {
		return nil, "", err
	}
	if !isModerator && listing.AuthorID != actorID {
		return nil, "", domain.ErrListingNotFound
	}
	latest, err := s.latestEvent(ctx, listingID)
	if err != nil {
		return nil, "", err
	}
	return listing, domain.DeriveModerationState(*listing, latest), nil
}

type transitionRequest struct {
	action      domain.ModerationAction
	actorID     uuid.UUID
	listingID   uuid.UUID
	patch       domain.ListingPatch
	guard       []domain.Predicate
	detail      domain.EventDetail
	allowAuthor bool
	softDelete  bool
}

func (s *ModerationService) transition(ctx context.Context, req transitionRequest) (*domain.Listing, error) {
	if req.actorID == uuid.Nil {
		return nil, domain.ErrAuthenticationRequired
	}
	listing, err := s.load(ctx, req.listingID)
	if err != nil {
		return nil, err
	}
	isModerator, err := s.isModerator(ctx, req.actorID)
	if err != nil {
		return nil, err
	}
	isAuthor := listing.AuthorID == req.actorID
	if !isModerator && !(req.allowAuthor && isAuthor) {
		s.record(req.action, "forbidden")
		return nil, domain.ErrForbidden
	}
	if req.action == domain.ModerationActionApprove && s.forbidSelfApproval && isAuthor {
		s.record(req.action, "forbidden")
		return nil, ErrReviewerConflict
	}

	latest, err := s.latestEvent(ctx, req.listingID)
	if err != nil {
		return nil, err
	}
	from := domain.DeriveModerationState(*listing, latest)
	if !canTransition(req.action, from) {
		s.record(req.action, "invalid")
		return nil, fmt.Errorf("%w: cannot %s a %s listing", domain.ErrInvalidTransition, req.action, from)
	}

	guard := append([]domain.Predicate(nil), req.guard...)
	if !isModerator {
		guard = append(guard, domain.Eq(domain.FieldAuthorID, req.actorID))
	}

	updated := listing
	switch {
	case req.softDelete:
		if err := s.listings.SoftDelete(ctx, req.listingID, guard); err != nil {
			return nil, s.commitError(req.action, err)
		}
		deletedAt := s.now().UTC()
		updated.DeletedAt = &deletedAt
	case !req.patch.IsEmpty() || len(req.guard) > 0:
		// An empty patch only bumps updated_at; the guard still decides.
		updated, err = s.listings.Update(ctx, req.listingID, req.patch, guard)
		if err != nil {
			return nil, s.commitError(req.action, err)
		}
	}

	if err := s.appendEvent(ctx, req.action, req.actorID, req.listingID, req.detail); err != nil {
		return nil, err
	}
	s.record(req.action, "ok")
	s.logger.Info("moderation transition",
		zap.String("action", string(req.action)),
		zap.String("listing_id", req.listingID.String()),
		zap.String("actor_id", req.actorID.String()),
		zap.String("from", string(from)),
	)
	return updated, nil
}

// commitError maps a rejected guard to an invalid transition: the row moved
// out of the expected state after it was read.
func (s *ModerationService) commitError(action domain.ModerationAction, err error) error {
	if isNotFound(err) {
		s.record(action, "conflict")
		return fmt.Errorf("%w: listing changed before %s was saved", domain.ErrInvalidTransition, action)
	}
	s.record(action, "error")
	return domain.NewStoreError(string(action)+" listing", err)
}

func (s *ModerationService) appendEvent(ctx context.Context, action domain.ModerationAction, actorID, targetID uuid.UUID, detail domain.EventDetail) error {
	if detail == nil {
		detail = domain.EventDetail{}
	}
	_, err := s.events.Append(ctx, &domain.ModerationEvent{
		Action:    action,
		ActorID:   actorID,
		TargetID:  targetID,
		Detail:    detail,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.NewStoreError("append moderation event", err)
	}
	return nil
}

func (s *ModerationService) load(ctx context.Context, listingID uuid.UUID) (*domain.Listing, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrListingNotFound
		}
		return nil, domain.NewStoreError("load listing", err)
	}
	return listing, nil
}

func (s *ModerationService) latestEvent(ctx context.Context, listingID uuid.UUID) (*domain.ModerationEvent, error) {
	latest, err := s.events.LatestByTarget(ctx, listingID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, domain.NewStoreError("load moderation event", err)
	}
	return latest, nil
}

func (s *ModerationService) isModerator(ctx context.Context, userID uuid.UUID) (bool, error) {
	ok, err := s.identity.IsModerator(ctx, userID)
	if err != nil {
		return false, domain.NewStoreError("resolve role", err)
	}
	return ok, nil
}

func (s *ModerationService) checkCategory(category string) error {
	if len(s.allowedCategories) == 0 {
		return nil
	}
	if _, ok := s.allowedCategories[strings.ToLower(strings.TrimSpace(category))]; !ok {
		return &domain.ValidationError{Field: "category_id", Reason: "is not an allowed category"}
	}
	return nil
}

func (s *ModerationService) record(action domain.ModerationAction, result string) {
	metrics.ModerationActions.WithLabelValues(string(action), result).Inc()
}
