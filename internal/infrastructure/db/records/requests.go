package records

import (
	"context"

	"github.com/homeservices/marketplace/internal/core/domain"
)

// RequestRepository implements ports.RequestRepository over the requests
// collection. Index 0 is the newest request.
type RequestRepository struct {
	requests *Collection[domain.ServiceRequest]
}

func NewRequestRepository(s *Store) *RequestRepository {
	return &RequestRepository{requests: NewCollection(s, KeyRequests, normalizeRequest)}
}

func normalizeRequest(r *domain.ServiceRequest) {
	if r.Offers == nil {
		r.Offers = []domain.Offer{}
	}
}

func (r *RequestRepository) List(ctx context.Context) ([]domain.ServiceRequest, error) {
	return r.requests.Load(ctx)
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	all, err := r.requests.Load(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOf(all, id); i >= 0 {
		found := all[i]
		return &found, nil
	}
	return nil, domain.ErrRequestNotFound
}

func (r *RequestRepository) Prepend(ctx context.Context, req domain.ServiceRequest) error {
	return r.requests.Update(ctx, func(all []domain.ServiceRequest) ([]domain.ServiceRequest, error) {
		return append([]domain.ServiceRequest{req}, all...), nil
	})
}

func (r *RequestRepository) AppendOffer(ctx context.Context, id string, offer domain.Offer) error {
	return r.requests.Update(ctx, func(all []domain.ServiceRequest) ([]domain.ServiceRequest, error) {
		i := indexOf(all, id)
		if i < 0 {
			return nil, domain.ErrRequestNotFound
		}
		all[i].Offers = append(all[i].Offers, offer)
		return all, nil
	})
}

func (r *RequestRepository) SetStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	return r.requests.Update(ctx, func(all []domain.ServiceRequest) ([]domain.ServiceRequest, error) {
		i := indexOf(all, id)
		if i < 0 {
			return nil, domain.ErrRequestNotFound
		}
		all[i].Status = status
		return all, nil
	})
}

// indexOf returns the first request with the given id, or -1.
func indexOf(all []domain.ServiceRequest, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
