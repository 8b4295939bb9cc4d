package catalog

import (
	"strings"

	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// ServiceOptions is the closed set of services a cleaner can offer
var ServiceOptions = []models.ServiceType{
	models.ServiceStandard,
	models.ServiceDeep,
	models.ServiceWindows,
	models.ServiceCarpets,
	models.ServicePostRenovation,
	models.ServiceIroning,
}

// Cities lists the cities profiles can be listed in
var Cities = []string{"Zagreb", "Split", "Rijeka", "Osijek", "Zadar", "Pula", "Dubrovnik", "Varaždin"}

// ParseService matches name against ServiceOptions, ignoring case and surrounding space
func ParseService(name string) (models.ServiceType, bool) {
	name = strings.TrimSpace(name)
	for _, opt := range ServiceOptions {
		if strings.EqualFold(string(opt), name) {
			return opt, true
		}
	}
	return "", false
}

// IsCity reports whether city is one of Cities
func IsCity(city string) bool {
	for _, c := range Cities {
		if c == city {
			return true
		}
	}
	return false
}
