package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/homeservices/marketplace/internal/core/domain"
	"github.com/homeservices/marketplace/internal/core/ports"
)

// RequestService implements request creation and the offer/accept actions.
type RequestService struct {
	requests ports.RequestRepository
	guard    ports.SubmissionGuard
	notifier ports.Notifier
	now      func() time.Time
	ids      idSource
	log      zerolog.Logger
}

// NewRequestService wires the service. guard and notifier may be nil.
func NewRequestService(
	requests ports.RequestRepository,
	guard ports.SubmissionGuard,
	notifier ports.Notifier,
	log zerolog.Logger,
) *RequestService {
	return &RequestService{
		requests: requests,
		guard:    guard,
		notifier: notifier,
		now:      time.Now,
		log:      log,
	}
}

// CreateRequest prepends a new Open request owned by owner.
func (s *RequestService) CreateRequest(ctx context.Context, owner domain.User, in ports.CreateRequestInput) (*domain.ServiceRequest, error) {
	if err := s.claim(ctx, in.Nonce); err != nil {
		return nil, err
	}

	now := s.now()
	req := domain.ServiceRequest{
		ID:            s.ids.next(now),
		HomeownerID:   owner.Email,
		HomeownerName: owner.Name,
		Title:         in.Title,
		Category:      in.Category,
		Description:   in.Description,
		Status:        domain.StatusOpen,
		Date:          now.Format(domain.DateLayout),
		Offers:        []domain.Offer{},
	}

	if err := s.requests.Prepend(ctx, req); err != nil {
		s.log.Error().Err(err).Msg("failed to create request")
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.log.Info().Str("request_id", req.ID).Str("homeowner", owner.Email).Str("category", req.Category).Msg("request posted")
	return &req, nil
}

// SubmitOffer appends an offer to the request. The request's status is not
// checked: offers on closed requests are accepted by the data layer.
func (s *RequestService) SubmitOffer(ctx context.Context, in ports.SubmitOfferInput) error {
	if err := s.claim(ctx, in.Nonce); err != nil {
		return err
	}

	offer := domain.Offer{
		ExpertName:  in.ExpertName,
		ExpertEmail: in.ExpertEmail,
		Price:       in.Price,
		Message:     in.Message,
	}
	if err := s.requests.AppendOffer(ctx, in.RequestID, offer); err != nil {
		return fmt.Errorf("submit offer: %w", err)
	}

	s.log.Info().Str("request_id", in.RequestID).Str("expert", in.ExpertEmail).Msg("offer submitted")
	return nil
}

// AcceptOffer closes the request on behalf of its owner. Which offer was
// accepted is not recorded on the request; the named expert is only notified.
func (s *RequestService) AcceptOffer(ctx context.Context, actor domain.User, requestID, expertName string) error {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("accept offer: %w", err)
	}
	if req.HomeownerID != actor.Email {
		return fmt.Errorf("accept offer: %w", domain.ErrForbidden)
	}

	if err := s.requests.SetStatus(ctx, requestID, domain.StatusClosed); err != nil {
		return fmt.Errorf("accept offer: %w", err)
	}

	s.log.Info().Str("request_id", requestID).Str("expert_name", expertName).Msg("offer accepted")

	if !req.IsOpen() || s.notifier == nil {
		return nil
	}
	offer, ok := req.OfferBy(expertName)
	if !ok {
		s.log.Debug().Str("request_id", requestID).Str("expert_name", expertName).Msg("no offer under that name, nobody to notify")
		return nil
	}
	s.notifier.Enqueue(domain.Notification{
		RequestID:     req.ID,
		RequestTitle:  req.Title,
		HomeownerName: req.HomeownerName,
		ExpertName:    offer.ExpertName,
		ExpertEmail:   offer.ExpertEmail,
		Message:       fmt.Sprintf("%s accepted your offer of $%s for %q.", req.HomeownerName, offer.Price, req.Title),
		CreatedAt:     s.now().UTC(),
	})
	return nil
}

func (s *RequestService) claim(ctx context.Context, nonce string) error {
	if s.guard == nil {
		return nil
	}
	fresh, err := s.guard.Claim(ctx, nonce)
	if err != nil {
		// Fail open.
		s.log.Warn().Err(err).Msg("submission guard unavailable, accepting form")
		return nil
	}
	if !fresh {
		s.log.Debug().Str("nonce", nonce).Msg("duplicate form submission skipped")
		return domain.ErrDuplicateSubmit
	}
	return nil
}

// idSource hands out millisecond timestamps as request ids, bumping past the
// last issued value so two requests in the same millisecond stay distinct.
type idSource struct {
	mu   sync.Mutex
	last int64
}

func (s *idSource) next(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return strconv.FormatInt(ms, 10)
}
