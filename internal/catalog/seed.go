package catalog

import "github.com/welldanyogia/sjajred-backend/internal/models"

// InitialCleaners are listed when no catalog has been persisted yet
func InitialCleaners() []models.CleanerProfile {
	return []models.CleanerProfile{
		{
			ID:          "1",
			FullName:    "Ana Horvat",
			City:        "Zagreb",
			Rating:      4.9,
			ReviewCount: 42,
			BasePrice:   12,
			Bio:         "Profesionalna čistačica sa preko 5 godina iskustva u održavanju luksuznih stanova i ureda. Pedantna, točna i pouzdana.",
			Services:    []models.ServiceType{models.ServiceStandard, models.ServiceWindows, models.ServiceIroning},
			Phone:       "091 123 4567",
			Email:       "ana.h@gmail.com",
			ImageURL:    "https://picsum.photos/seed/ana/400/400",
			IsVerified:  true,
			Reviews: []models.Review{
				{ID: "r1", User: "Marko M.", Rating: 5, Comment: "Ana je fantastična, stan blista!", Date: "2024-05-10"},
			},
			Availability: "Pon-Pet: 08:00 - 16:00",
		},
		{
			ID:          "2",
			FullName:    "Ivan Babić",
			City:        "Split",
			Rating:      4.7,
			ReviewCount: 28,
			BasePrice:   15,
			Bio:         "Specijaliziran za dubinska čišćenja i čišćenja nakon renovacija. Koristim isključivo ekološka sredstva.",
			Services:    []models.ServiceType{models.ServiceDeep, models.ServiceCarpets, models.ServicePostRenovation},
			Phone:       "098 765 4321",
			Email:       "ivan.service@outlook.com",
			ImageURL:    "https://picsum.photos/seed/ivan/400/400",
			IsVerified:  true,
			Reviews: []models.Review{
				{ID: "r2", User: "Ivana P.", Rating: 4, Comment: "Vrlo temeljit, preporuka.", Date: "2024-05-12"},
			},
			Availability: "Vikendom po dogovoru",
		},
		{
			ID:           "3",
			FullName:     "Marija Kovač",
			City:         "Rijeka",
			Rating:       5.0,
			ReviewCount:  15,
			BasePrice:    10,
			Bio:          "Brza i učinkovita. Nudim usluge generalnog čišćenja kuća i apartmana prije i nakon sezone.",
			Services:     []models.ServiceType{models.ServiceStandard, models.ServiceIroning},
			Phone:        "095 555 6666",
			Email:        "marija.cleaning@ri.hr",
			ImageURL:     "https://picsum.photos/seed/marija/400/400",
			IsVerified:   false,
			Reviews:      []models.Review{},
			Availability: "Svaki dan: 07:00 - 20:00",
		},
	}
}
