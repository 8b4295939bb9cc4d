package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/welldanyogia/sjajred-backend/internal/catalog"
	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// DefaultTimeout bounds a single assist call
const DefaultTimeout = 20 * time.Second

const (
	bioSystemInstruction = "Ti si stručnjak za marketing i pisanje oglasa na hrvatskom jeziku. " +
		"Tvoj zadatak je pretvoriti kratki opis u profesionalnu biografiju za marketplace usluga čišćenja."

	bioPrompt = "Poboljšaj ovaj opis profila za osobu koja pruža usluge čišćenja. " +
		"Učini ga profesionalnim, povjerljivim i privlačnim klijentima. Opis mora biti na hrvatskom jeziku.\n\n" +
		"Originalni opis: %s\nUsluge koje pruža: %s"

	servicesPrompt = "Na temelju ovog iskustva, predloži koje bi usluge čišćenja osoba mogla pružati " +
		"(npr. dubinsko, standardno, prozori, nakon radova). Odgovori u formatu JSON liste stringova.\n\n" +
		"Iskustvo: %s"
)

var bioTemperature float32 = 0.7

// Service wraps a Generator with the marketplace prompts
type Service struct {
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger
}

// NewService creates a Service. A nil generator behaves like NoopGenerator.
func NewService(gen Generator, logger *slog.Logger) *Service {
	if gen == nil {
		gen = NoopGenerator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, timeout: DefaultTimeout, logger: logger}
}

// OptimizeBio rewrites rawBio as a polished Croatian profile text.
// Any failure returns rawBio unchanged.
func (s *Service) OptimizeBio(ctx context.Context, rawBio string, services []models.ServiceType) string {
	if strings.TrimSpace(rawBio) == "" {
		return rawBio
	}

	names := make([]string, len(services))
	for i, svc := range services {
		names[i] = string(svc)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, Request{
		SystemInstruction: bioSystemInstruction,
		Prompt:            fmt.Sprintf(bioPrompt, rawBio, strings.Join(names, ", ")),
		Temperature:       &bioTemperature,
	})
	if err != nil {
		s.logger.Warn("bio optimization failed", slog.Any("error", err))
		return rawBio
	}
	if text = strings.TrimSpace(text); text == "" {
		return rawBio
	}
	return text
}

// SuggestServices proposes services matching a description of experience.
// Suggestions outside the known service set are dropped; failures yield none.
func (s *Service) SuggestServices(ctx context.Context, experience string) []models.ServiceType {
	out := []models.ServiceType{}
	if strings.TrimSpace(experience) == "" {
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, Request{
		Prompt:     fmt.Sprintf(servicesPrompt, experience),
		StringList: true,
	})
	if err != nil {
		s.logger.Warn("service suggestion failed", slog.Any("error", err))
		return out
	}

	var names []string
	if err := json.Unmarshal([]byte(text), &names); err != nil {
		s.logger.Warn("service suggestion was not a string list", slog.Any("error", err))
		return out
	}

	seen := make(map[models.ServiceType]bool)
	for _, name := range names {
		svc, ok := catalog.ParseService(name)
		if !ok || seen[svc] {
			continue
		}
		seen[svc] = true
		out = append(out, svc)
	}
	return out
}
