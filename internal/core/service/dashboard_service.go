package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/homeservices/marketplace/internal/core/domain"
	"github.com/homeservices/marketplace/internal/core/ports"
)

// DashboardService builds the role-specific dashboard from the record store.
// Every call re-reads storage; nothing is cached between renders.
type DashboardService struct {
	requests      ports.RequestRepository
	notifications ports.NotificationRepository
	log           zerolog.Logger
}

func NewDashboardService(requests ports.RequestRepository, notifications ports.NotificationRepository, log zerolog.Logger) *DashboardService {
	return &DashboardService{requests: requests, notifications: notifications, log: log}
}

// Build returns the expert view for experts and the homeowner view for every
// other role.
func (s *DashboardService) Build(ctx context.Context, user domain.User) (*ports.Dashboard, error) {
	all, err := s.requests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("build dashboard: %w", err)
	}

	d := &ports.Dashboard{User: user, Role: user.EffectiveRole()}
	if d.Role == domain.RoleExpert {
		d.Jobs = expertJobs(all, user.Email)
		if s.notifications != nil {
			d.Notifications, err = s.notifications.ListFor(ctx, user.Email)
			if err != nil {
				return nil, fmt.Errorf("build dashboard: %w", err)
			}
		}
		return d, nil
	}

	d.MyRequests = homeownerRequests(all, user.Email)
	return d, nil
}

// homeownerRequests keeps the requests owned by email, in storage order.
func homeownerRequests(all []domain.ServiceRequest, email string) []ports.HomeownerRequest {
	out := []ports.HomeownerRequest{}
	for _, r := range all {
		if r.HomeownerID != email {
			continue
		}
		out = append(out, ports.HomeownerRequest{Request: r, CanAccept: r.IsOpen()})
	}
	return out
}

// expertJobs keeps the Open requests, in storage order, flagging the ones the
// expert already offered on.
func expertJobs(all []domain.ServiceRequest, email string) []ports.ExpertJob {
	out := []ports.ExpertJob{}
	for _, r := range all {
		if !r.IsOpen() {
			continue
		}
		out = append(out, ports.ExpertJob{Request: r, AlreadyOffered: r.HasOfferFrom(email)})
	}
	return out
}
