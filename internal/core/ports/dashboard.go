package ports

import (
	"context"

	"github.com/homeservices/marketplace/internal/core/domain"
)

// HomeownerRequest is one of the homeowner's own requests.
type HomeownerRequest struct {
	Request domain.ServiceRequest
	// CanAccept is true while the request is Open.
	CanAccept bool
}

// ExpertJob is one open request on the job board.
type ExpertJob struct {
	Request        domain.ServiceRequest
	AlreadyOffered bool
}

// Dashboard is the role-branched view built from the record store.
type Dashboard struct {
	User          domain.User
	Role          domain.Role
	MyRequests    []HomeownerRequest
	Jobs          []ExpertJob
	Notifications []domain.Notification
}

// DashboardService builds dashboard views.
type DashboardService interface {
	Build(ctx context.Context, user domain.User) (*Dashboard, error)
}
