package directory

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicops/clinicops/internal/platform/apperr"
)

var validRoles = map[string]bool{
	"physician": true, "nurse": true, "dentist": true, "registrar": true, "admin": true,
}

type Service struct {
	patients  PatientRepository
	providers ProviderRepository
}

func NewService(patients PatientRepository, providers ProviderRepository) *Service {
	return &Service{patients: patients, providers: providers}
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return apperr.New(apperr.KindValidation, "first_name and last_name are required")
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) CreateProvider(ctx context.Context, p *Provider) error {
	if p.FirstName == "" || p.LastName == "" {
		return apperr.New(apperr.KindValidation, "first_name and last_name are required")
	}
	if !validRoles[p.Role] {
		return apperr.New(apperr.KindValidation, "invalid provider role: %s", p.Role)
	}
	return s.providers.Create(ctx, p)
}

func (s *Service) GetProvider(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return s.providers.GetByID(ctx, id)
}

func (s *Service) ListProviders(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	return s.providers.List(ctx, limit, offset)
}

// PatientContact returns a patient's display name and contact channels for
// reminder delivery.
func (s *Service) PatientContact(ctx context.Context, patientID uuid.UUID) (name, email, phone string, err error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return "", "", "", err
	}
	name = p.FirstName + " " + p.LastName
	if p.Email != nil {
		email = *p.Email
	}
	if p.PhoneMobile != nil {
		phone = *p.PhoneMobile
	}
	return name, email, phone, nil
}

// ProviderEmail returns a provider's email address, or empty when none is on
// file.
func (s *Service) ProviderEmail(ctx context.Context, providerID uuid.UUID) (string, error) {
	p, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return "", err
	}
	if p.Email == nil {
		return "", nil
	}
	return *p.Email, nil
}

// ProviderRole implements the lookup the lifecycle engine uses for role
// eligibility checks. Inactive providers are not assignable.
func (s *Service) ProviderRole(ctx context.Context, providerID uuid.UUID) (string, error) {
	p, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return "", err
	}
	if !p.Active {
		return "", apperr.New(apperr.KindInvalidState, "provider is inactive")
	}
	return p.Role, nil
}
