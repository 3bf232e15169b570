package domain

import "time"

// RequestStatus is the lifecycle state of a service request.
type RequestStatus string

const (
	StatusOpen   RequestStatus = "Open"
	StatusClosed RequestStatus = "Closed"
)

// Categories is the fixed option set offered by the request form.
var Categories = []string{
	"Plumbing",
	"Electrical",
	"Carpentry",
	"Painting",
	"Cleaning",
	"HVAC",
	"Landscaping",
	"Roofing",
	"Other",
}

// DateLayout renders the creation date the way the request cards show it.
const DateLayout = "1/2/2006"

// Offer is an expert's proposal against one request. Price is kept as the
// submitted string.
type Offer struct {
	ExpertName  string `json:"expertName"`
	ExpertEmail string `json:"expertEmail" validate:"required"`
	Price       string `json:"price"`
	Message     string `json:"message"`
}

// ServiceRequest is a homeowner's posted need. Offers are kept in submission
// order. The request does not record which offer was accepted.
type ServiceRequest struct {
	ID            string        `json:"id" validate:"required"`
	HomeownerID   string        `json:"homeownerId" validate:"required"`
	HomeownerName string        `json:"homeownerName"`
	Title         string        `json:"title"`
	Category      string        `json:"category"`
	Description   string        `json:"description"`
	Status        RequestStatus `json:"status" validate:"required,oneof=Open Closed"`
	Date          string        `json:"date"`
	Offers        []Offer       `json:"offers" validate:"dive"`
}

// IsOpen reports whether the request still accepts an acceptance.
func (r ServiceRequest) IsOpen() bool {
	return r.Status == StatusOpen
}

// HasOfferFrom reports whether the expert with this email already offered.
func (r ServiceRequest) HasOfferFrom(expertEmail string) bool {
	for _, o := range r.Offers {
		if o.ExpertEmail == expertEmail {
			return true
		}
	}
	return false
}

// OfferBy returns the first offer submitted under the given expert name.
func (r ServiceRequest) OfferBy(expertName string) (Offer, bool) {
	for _, o := range r.Offers {
		if o.ExpertName == expertName {
			return o, true
		}
	}
	return Offer{}, false
}

// Notification tells an expert that one of their offers was accepted.
type Notification struct {
	RequestID     string    `json:"requestId" validate:"required"`
	RequestTitle  string    `json:"requestTitle"`
	HomeownerName string    `json:"homeownerName"`
	ExpertName    string    `json:"expertName"`
	ExpertEmail   string    `json:"expertEmail" validate:"required"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"createdAt"`
}
