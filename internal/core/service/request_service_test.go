package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/homeservices/marketplace/internal/core/domain"
	"github.com/homeservices/marketplace/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubRequestRepo struct {
	requests []domain.ServiceRequest
}

func (r *stubRequestRepo) List(_ context.Context) ([]domain.ServiceRequest, error) {
	return append([]domain.ServiceRequest(nil), r.requests...), nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id string) (*domain.ServiceRequest, error) {
	for _, req := range r.requests {
		if req.ID == id {
			clone := req
			return &clone, nil
		}
	}
	return nil, domain.ErrRequestNotFound
}

func (r *stubRequestRepo) Prepend(_ context.Context, req domain.ServiceRequest) error {
	r.requests = append([]domain.ServiceRequest{req}, r.requests...)
	return nil
}

func (r *stubRequestRepo) AppendOffer(_ context.Context, id string, offer domain.Offer) error {
	for i := range r.requests {
		if r.requests[i].ID == id {
			r.requests[i].Offers = append(r.requests[i].Offers, offer)
			return nil
		}
	}
	return domain.ErrRequestNotFound
}

func (r *stubRequestRepo) SetStatus(_ context.Context, id string, status domain.RequestStatus) error {
	for i := range r.requests {
		if r.requests[i].ID == id {
			r.requests[i].Status = status
			return nil
		}
	}
	return domain.ErrRequestNotFound
}

type stubGuard struct {
	seen map[string]bool
	err  error
}

func (g *stubGuard) Claim(_ context.Context, nonce string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	if nonce == "" {
		return true, nil
	}
	if g.seen[nonce] {
		return false, nil
	}
	g.seen[nonce] = true
	return true, nil
}

type stubNotifier struct {
	sent []domain.Notification
}

func (n *stubNotifier) Enqueue(note domain.Notification) {
	n.sent = append(n.sent, note)
}

var (
	homeowner = domain.User{Name: "Hana Owens", Email: "hana@x.com", Role: domain.RoleHomeowner}
	expert    = domain.User{Name: "Eli Sparks", Email: "eli@x.com", Role: domain.RoleExpert}
)

func newRequestFixture() (*RequestService, *stubRequestRepo, *stubNotifier) {
	repo := &stubRequestRepo{}
	notifier := &stubNotifier{}
	svc := NewRequestService(repo, &stubGuard{}, notifier, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }
	return svc, repo, notifier
}

func openRequest(id string, offers ...domain.Offer) domain.ServiceRequest {
	if offers == nil {
		offers = []domain.Offer{}
	}
	return domain.ServiceRequest{
		ID:            id,
		HomeownerID:   homeowner.Email,
		HomeownerName: homeowner.Name,
		Title:         "Fix sink",
		Category:      "Plumbing",
		Status:        domain.StatusOpen,
		Date:          "3/5/2024",
		Offers:        offers,
	}
}

// ---------------------------------------------------------------------------
// CreateRequest
// ---------------------------------------------------------------------------

func TestRequestService_CreateRequest(t *testing.T) {
	svc, repo, _ := newRequestFixture()

	req, err := svc.CreateRequest(context.Background(), homeowner, ports.CreateRequestInput{
		Title: "Fix sink", Category: "Plumbing", Description: "Leaks",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != domain.StatusOpen || req.Date != "3/5/2024" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.HomeownerID != homeowner.Email || req.HomeownerName != homeowner.Name {
		t.Fatalf("unexpected owner fields: %+v", req)
	}
	if req.Offers == nil || len(req.Offers) != 0 {
		t.Fatalf("expected empty offers, got %v", req.Offers)
	}
	if len(repo.requests) != 1 {
		t.Fatalf("expected 1 stored request, got %d", len(repo.requests))
	}
}

func TestRequestService_CreateRequest_NewestFirstAndUniqueIDs(t *testing.T) {
	svc, repo, _ := newRequestFixture()
	ctx := context.Background()

	first, _ := svc.CreateRequest(ctx, homeowner, ports.CreateRequestInput{Title: "A", Category: "Other", Description: "a"})
	second, _ := svc.CreateRequest(ctx, homeowner, ports.CreateRequestInput{Title: "B", Category: "Other", Description: "b"})

	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, both %q", first.ID)
	}
	if repo.requests[0].ID != second.ID || repo.requests[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s, %s", repo.requests[0].ID, repo.requests[1].ID)
	}
}

func TestRequestService_CreateRequest_ReplayedNonce(t *testing.T) {
	svc, repo, _ := newRequestFixture()
	in := ports.CreateRequestInput{Title: "A", Category: "Other", Description: "a", Nonce: "n1"}

	if _, err := svc.CreateRequest(context.Background(), homeowner, in); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := svc.CreateRequest(context.Background(), homeowner, in)
	if !errors.Is(err, domain.ErrDuplicateSubmit) {
		t.Fatalf("expected ErrDuplicateSubmit, got %v", err)
	}
	if len(repo.requests) != 1 {
		t.Fatalf("expected 1 stored request, got %d", len(repo.requests))
	}
}

func TestRequestService_CreateRequest_GuardDownFailsOpen(t *testing.T) {
	repo := &stubRequestRepo{}
	svc := NewRequestService(repo, &stubGuard{err: errors.New("redis down")}, nil, zerolog.Nop())

	if _, err := svc.CreateRequest(context.Background(), homeowner, ports.CreateRequestInput{Title: "A", Category: "Other", Description: "a", Nonce: "n1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.requests) != 1 {
		t.Fatalf("expected request stored, got %d", len(repo.requests))
	}
}

// ---------------------------------------------------------------------------
// SubmitOffer
// ---------------------------------------------------------------------------

func TestRequestService_SubmitOffer(t *testing.T) {
	svc, repo, _ := newRequestFixture()
	repo.requests = []domain.ServiceRequest{openRequest("r1")}

	err := svc.SubmitOffer(context.Background(), ports.SubmitOfferInput{
		RequestID: "r1", ExpertName: expert.Name, ExpertEmail: expert.Email, Price: "150", Message: "Tomorrow",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := repo.requests[0]
	if len(got.Offers) != 1 || got.Offers[0].Price != "150" || got.Offers[0].ExpertEmail != expert.Email {
		t.Fatalf("unexpected offers: %+v", got.Offers)
	}
	if got.Status != domain.StatusOpen {
		t.Fatalf("status must be untouched, got %q", got.Status)
	}
}

func TestRequestService_SubmitOffer_UnknownRequest(t *testing.T) {
	svc, repo, _ := newRequestFixture()
	repo.requests = []domain.ServiceRequest{openRequest("r1")}

	err := svc.SubmitOffer(context.Background(), ports.SubmitOfferInput{RequestID: "nope", ExpertEmail: expert.Email})
	if !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	if len(repo.requests[0].Offers) != 0 {
		t.Fatalf("expected no offers, got %+v", repo.requests[0].Offers)
	}
}

func TestRequestService_SubmitOffer_ClosedRequestStillAccepted(t *testing.T) {
	svc, repo, _ := newRequestFixture()
	closed := openRequest("r1")
	closed.Status = domain.StatusClosed
	repo.requests = []domain.ServiceRequest{closed}

	err := svc.SubmitOffer(context.Background(), ports.SubmitOfferInput{RequestID: "r1", ExpertEmail: expert.Email, Price: "10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.requests[0].Offers) != 1 || repo.requests[0].Status != domain.StatusClosed {
		t.Fatalf("unexpected request: %+v", repo.requests[0])
	}
}

// ---------------------------------------------------------------------------
// AcceptOffer
// ---------------------------------------------------------------------------

func TestRequestService_AcceptOffer(t *testing.T) {
	svc, repo, notifier := newRequestFixture()
	offer := domain.Offer{ExpertName: expert.Name, ExpertEmail: expert.Email, Price: "150", Message: "hi"}
	repo.requests = []domain.ServiceRequest{openRequest("r1", offer)}

	if err := svc.AcceptOffer(context.Background(), homeowner, "r1", expert.Name); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := repo.requests[0]
	if got.Status != domain.StatusClosed {
		t.Fatalf("expected Closed, got %q", got.Status)
	}
	if len(got.Offers) != 1 || got.Offers[0] != offer {
		t.Fatalf("offers must be untouched, got %+v", got.Offers)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.ExpertEmail != expert.Email || n.RequestID != "r1" || !strings.Contains(n.Message, "$150") {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestRequestService_AcceptOffer_NotOwner(t *testing.T) {
	svc, repo, notifier := newRequestFixture()
	repo.requests = []domain.ServiceRequest{openRequest("r1")}

	other := domain.User{Name: "Mallory", Email: "mal@x.com", Role: domain.RoleHomeowner}
	err := svc.AcceptOffer(context.Background(), other, "r1", expert.Name)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.requests[0].Status != domain.StatusOpen || len(notifier.sent) != 0 {
		t.Fatalf("request must be untouched: %+v", repo.requests[0])
	}
}

func TestRequestService_AcceptOffer_UnknownRequest(t *testing.T) {
	svc, _, _ := newRequestFixture()

	if err := svc.AcceptOffer(context.Background(), homeowner, "nope", expert.Name); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestRequestService_AcceptOffer_AlreadyClosedDoesNotRenotify(t *testing.T) {
	svc, repo, notifier := newRequestFixture()
	req := openRequest("r1", domain.Offer{ExpertName: expert.Name, ExpertEmail: expert.Email, Price: "1"})
	req.Status = domain.StatusClosed
	repo.requests = []domain.ServiceRequest{req}

	if err := svc.AcceptOffer(context.Background(), homeowner, "r1", expert.Name); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notification, got %d", len(notifier.sent))
	}
}

func TestRequestService_AcceptOffer_UnknownExpertName(t *testing.T) {
	svc, repo, notifier := newRequestFixture()
	repo.requests = []domain.ServiceRequest{openRequest("r1")}

	if err := svc.AcceptOffer(context.Background(), homeowner, "r1", "Ghost"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.requests[0].Status != domain.StatusClosed {
		t.Fatalf("expected Closed, got %q", repo.requests[0].Status)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notification, got %d", len(notifier.sent))
	}
}

func TestIDSource_BumpsWithinSameMillisecond(t *testing.T) {
	var ids idSource
	now := time.UnixMilli(1700000000000)

	a := ids.next(now)
	b := ids.next(now)
	if a != "1700000000000" || b != "1700000000001" {
		t.Fatalf("unexpected ids %q, %q", a, b)
	}
}
