package models

// ServiceType is one of the closed set of cleaning services
type ServiceType string

const (
	ServiceStandard       ServiceType = "Standardno čišćenje"
	ServiceDeep           ServiceType = "Dubinsko čišćenje"
	ServiceWindows        ServiceType = "Čišćenje prozora"
	ServiceCarpets        ServiceType = "Pranje tepiha"
	ServicePostRenovation ServiceType = "Čišćenje nakon radova"
	ServiceIroning        ServiceType = "Peglanje veša"
)

// CleanerProfile is a listed cleaning-service provider
type CleanerProfile struct {
	ID           string        `json:"id"`
	FullName     string        `json:"full_name"`
	City         string        `json:"city"`
	Rating       float64       `json:"rating"`
	ReviewCount  int           `json:"review_count"`
	BasePrice    float64       `json:"base_price"`
	Bio          string        `json:"bio"`
	Services     []ServiceType `json:"services"`
	Phone        string        `json:"phone"`
	Email        string        `json:"email"`
	ImageURL     string        `json:"image_url"`
	IsVerified   bool          `json:"is_verified"`
	Reviews      []Review      `json:"reviews"`
	Availability string        `json:"availability"`
}

// Ref returns the routing triple used when opening an inquiry
func (p *CleanerProfile) Ref() CleanerRef {
	return CleanerRef{ID: p.ID, Name: p.FullName, Email: p.Email}
}

// Review is a client rating of a cleaner
type Review struct {
	ID      string `json:"id"`
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
}

// NewProfileInput is the payload for publishing a cleaner profile
type NewProfileInput struct {
	FullName  string        `json:"full_name"`
	City      string        `json:"city"`
	BasePrice float64       `json:"base_price"`
	Bio       string        `json:"bio"`
	Services  []ServiceType `json:"services"`
	Phone     string        `json:"phone"`
	Email     string        `json:"email"`
}
