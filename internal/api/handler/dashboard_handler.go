package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/homeservices/marketplace/internal/core/domain"
	"github.com/homeservices/marketplace/internal/core/ports"
	"github.com/homeservices/marketplace/internal/web"
)

// DashboardHandler renders the role-specific dashboard. Every request re-reads
// the record store, so a redirect after a mutation always shows the latest
// persisted state.
type DashboardHandler struct {
	dashboard ports.DashboardService
	pages     pages
}

func NewDashboardHandler(dashboard ports.DashboardService, flashes ports.FlashStore, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, pages: pages{flashes: flashes, log: log}}
}

type homeownerPage struct {
	Dashboard  *ports.Dashboard
	ShowForm   bool
	Categories []string
	Nonce      string
}

type jobView struct {
	ports.ExpertJob
	Nonce string
}

type expertPage struct {
	Dashboard *ports.Dashboard
	Jobs      []jobView
}

// Show handles GET /dashboard. ?new=1 reveals the request form.
func (h *DashboardHandler) Show(c echo.Context) error {
	user := ctxUser(c)
	d, err := h.dashboard.Build(c.Request().Context(), *user)
	if err != nil {
		return err
	}

	if d.Role == domain.RoleExpert {
		jobs := make([]jobView, 0, len(d.Jobs))
		for _, j := range d.Jobs {
			jobs = append(jobs, jobView{ExpertJob: j, Nonce: uuid.NewString()})
		}
		return h.pages.render(c, http.StatusOK, web.PageExpert, "Job Board", nil, expertPage{Dashboard: d, Jobs: jobs})
	}

	return h.pages.render(c, http.StatusOK, web.PageHomeowner, "My Requests", nil, homeownerPage{
		Dashboard:  d,
		ShowForm:   c.QueryParam("new") == "1",
		Categories: domain.Categories,
		Nonce:      uuid.NewString(),
	})
}

// --- JSON mirror ---

type userResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type sessionResponse struct {
	User *userResponse `json:"user"`
}

type offerResponse struct {
	ExpertName  string `json:"expertName"`
	ExpertEmail string `json:"expertEmail"`
	Price       string `json:"price"`
	Message     string `json:"message"`
}

type requestResponse struct {
	ID            string          `json:"id"`
	HomeownerID   string          `json:"homeownerId"`
	HomeownerName string          `json:"homeownerName"`
	Title         string          `json:"title"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	Date          string          `json:"date"`
	Offers        []offerResponse `json:"offers"`
	CanAccept     *bool           `json:"canAccept,omitempty"`
	AlreadyOffer  *bool           `json:"alreadyOffered,omitempty"`
}

type notificationResponse struct {
	RequestID string `json:"requestId"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

type dashboardResponse struct {
	Role          string                 `json:"role"`
	Requests      []requestResponse      `json:"requests"`
	Notifications []notificationResponse `json:"notifications,omitempty"`
}

// Session handles GET /api/v1/session.
func (h *DashboardHandler) Session(c echo.Context) error {
	user := ctxUser(c)
	if user == nil {
		return c.JSON(http.StatusOK, sessionResponse{})
	}
	return c.JSON(http.StatusOK, sessionResponse{User: toUserResponse(*user)})
}

// DashboardJSON handles GET /api/v1/dashboard.
func (h *DashboardHandler) DashboardJSON(c echo.Context) error {
	d, err := h.dashboard.Build(c.Request().Context(), *ctxUser(c))
	if err != nil {
		return err
	}

	resp := dashboardResponse{Role: string(d.Role), Requests: []requestResponse{}}
	if d.Role == domain.RoleExpert {
		for _, j := range d.Jobs {
			r := toRequestResponse(j.Request)
			offered := j.AlreadyOffered
			r.AlreadyOffer = &offered
			resp.Requests = append(resp.Requests, r)
		}
		for _, n := range d.Notifications {
			resp.Notifications = append(resp.Notifications, notificationResponse{
				RequestID: n.RequestID,
				Message:   n.Message,
				CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
	} else {
		for _, mr := range d.MyRequests {
			r := toRequestResponse(mr.Request)
			canAccept := mr.CanAccept
			r.CanAccept = &canAccept
			resp.Requests = append(resp.Requests, r)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func toUserResponse(u domain.User) *userResponse {
	return &userResponse{Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

func toRequestResponse(r domain.ServiceRequest) requestResponse {
	offers := make([]offerResponse, 0, len(r.Offers))
	for _, o := range r.Offers {
		offers = append(offers, offerResponse{
			ExpertName:  o.ExpertName,
			ExpertEmail: o.ExpertEmail,
			Price:       o.Price,
			Message:     o.Message,
		})
	}
	return requestResponse{
		ID:            r.ID,
		HomeownerID:   r.HomeownerID,
		HomeownerName: r.HomeownerName,
		Title:         r.Title,
		Category:      r.Category,
		Description:   r.Description,
		Status:        string(r.Status),
		Date:          r.Date,
		Offers:        offers,
	}
}
