package directory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/clinicops/internal/platform/apperr"
)

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (r *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.Active = true
	p.CreatedAt = time.Now()
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "patient not found")
	}
	cp := *p
	return &cp, nil
}

func (r *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range r.patients {
		cp := *p
		out = append(out, &cp)
	}
	return out, len(out), nil
}

type mockProviderRepo struct {
	providers map[uuid.UUID]*Provider
}

func newMockProviderRepo() *mockProviderRepo {
	return &mockProviderRepo{providers: make(map[uuid.UUID]*Provider)}
}

func (r *mockProviderRepo) Create(_ context.Context, p *Provider) error {
	p.ID = uuid.New()
	p.Active = true
	p.CreatedAt = time.Now()
	cp := *p
	r.providers[p.ID] = &cp
	return nil
}

func (r *mockProviderRepo) GetByID(_ context.Context, id uuid.UUID) (*Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "provider not found")
	}
	cp := *p
	return &cp, nil
}

func (r *mockProviderRepo) List(_ context.Context, limit, offset int) ([]*Provider, int, error) {
	var out []*Provider
	for _, p := range r.providers {
		cp := *p
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockPatientRepo, *mockProviderRepo) {
	patients := newMockPatientRepo()
	providers := newMockProviderRepo()
	return NewService(patients, providers), patients, providers
}

func strptr(s string) *string { return &s }

func TestCreatePatient_RequiresName(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.CreatePatient(context.Background(), &Patient{FirstName: "Maria"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want validation", apperr.KindOf(err))
	}
}

func TestCreateProvider_ValidatesRole(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	err := svc.CreateProvider(ctx, &Provider{FirstName: "Ana", LastName: "Reyes", Role: "surgeon"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want validation for unknown role", apperr.KindOf(err))
	}

	if err := svc.CreateProvider(ctx, &Provider{FirstName: "Ana", LastName: "Reyes", Role: "physician"}); err != nil {
		t.Errorf("valid provider rejected: %v", err)
	}
}

func TestPatientContact(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p := &Patient{
		FirstName:   "Maria",
		LastName:    "Cruz",
		Email:       strptr("maria@example.com"),
		PhoneMobile: strptr("+15550001111"),
	}
	if err := svc.CreatePatient(ctx, p); err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}

	name, email, phone, err := svc.PatientContact(ctx, p.ID)
	if err != nil {
		t.Fatalf("PatientContact: %v", err)
	}
	if name != "Maria Cruz" || email != "maria@example.com" || phone != "+15550001111" {
		t.Errorf("contact = %q/%q/%q", name, email, phone)
	}
}

func TestPatientContact_MissingChannelsAreEmpty(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p := &Patient{FirstName: "Jo", LastName: "Tan"}
	if err := svc.CreatePatient(ctx, p); err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}

	_, email, phone, err := svc.PatientContact(ctx, p.ID)
	if err != nil {
		t.Fatalf("PatientContact: %v", err)
	}
	if email != "" || phone != "" {
		t.Errorf("expected empty channels, got %q/%q", email, phone)
	}
}

func TestProviderRole_InactiveProviderRejected(t *testing.T) {
	svc, _, providers := newTestService()
	ctx := context.Background()

	p := &Provider{FirstName: "Ana", LastName: "Reyes", Role: "nurse"}
	if err := svc.CreateProvider(ctx, p); err != nil {
		t.Fatalf("CreateProvider: %v", err)
	}

	role, err := svc.ProviderRole(ctx, p.ID)
	if err != nil || role != "nurse" {
		t.Fatalf("ProviderRole = %q, %v", role, err)
	}

	providers.providers[p.ID].Active = false
	_, err = svc.ProviderRole(ctx, p.ID)
	if apperr.KindOf(err) != apperr.KindInvalidState {
		t.Errorf("kind = %v, want invalid state for inactive provider", apperr.KindOf(err))
	}
}

func TestProviderRole_UnknownProvider(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.ProviderRole(context.Background(), uuid.New())
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %v, want not found", apperr.KindOf(err))
	}
}

func TestProviderEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	withEmail := &Provider{FirstName: "Ana", LastName: "Reyes", Role: "physician", Email: strptr("ana@clinic.example")}
	if err := svc.CreateProvider(ctx, withEmail); err != nil {
		t.Fatalf("CreateProvider: %v", err)
	}
	email, err := svc.ProviderEmail(ctx, withEmail.ID)
	if err != nil || email != "ana@clinic.example" {
		t.Errorf("ProviderEmail = %q, %v", email, err)
	}

	without := &Provider{FirstName: "Ben", LastName: "Lim", Role: "nurse"}
	if err := svc.CreateProvider(ctx, without); err != nil {
		t.Fatalf("CreateProvider: %v", err)
	}
	email, err = svc.ProviderEmail(ctx, without.ID)
	if err != nil || email != "" {
		t.Errorf("ProviderEmail without address = %q, %v", email, err)
	}
}
