package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dentclinic/internal/models"
	"github.com/terraincognita07/dentclinic/internal/store"
)

type PatientInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"`
	Address   string `json:"address"`
}

type PatientService struct {
	store store.Persistence
	now   func() time.Time
}

func NewPatientService(persistence store.Persistence) *PatientService {
	return &PatientService{store: persistence, now: time.Now}
}

// List returns patients by name; a search term keeps those whose name or email
// contains it (case-insensitive) or whose phone contains it verbatim.
func (service *PatientService) List(ctx context.Context, search string) ([]models.Patient, error) {
	patients := make([]models.Patient, 0)
	if err := service.store.List(ctx, store.Patients, store.Query{}.Asc("name"), &patients); err != nil {
		return nil, err
	}

	term := strings.TrimSpace(search)
	if term == "" {
		return patients, nil
	}
	lowered := strings.ToLower(term)

	matched := make([]models.Patient, 0, len(patients))
	for _, patient := range patients {
		if strings.Contains(strings.ToLower(patient.Name), lowered) ||
			strings.Contains(strings.ToLower(patient.Email), lowered) ||
			strings.Contains(patient.Phone, term) {
			matched = append(matched, patient)
		}
	}
	return matched, nil
}

// Suggest backs the booking form autocomplete.
func (service *PatientService) Suggest(ctx context.Context, name string) ([]models.Patient, error) {
	term := strings.ToLower(strings.TrimSpace(name))
	if term == "" {
		return []models.Patient{}, nil
	}

	patients := make([]models.Patient, 0)
	if err := service.store.List(ctx, store.Patients, store.Query{}.Asc("name"), &patients); err != nil {
		return nil, err
	}

	matched := make([]models.Patient, 0)
	for _, patient := range patients {
		if strings.Contains(strings.ToLower(patient.Name), term) {
			matched = append(matched, patient)
		}
	}
	return matched, nil
}

func (service *PatientService) Create(ctx context.Context, input PatientInput) (models.Patient, error) {
	input, err := normalizePatientInput(input)
	if err != nil {
		return models.Patient{}, err
	}

	patient := models.Patient{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		BirthDate: input.BirthDate,
		Address:   input.Address,
		CreatedAt: stamp(service.now()),
	}
	if err := service.store.Insert(ctx, store.Patients, &patient); err != nil {
		return models.Patient{}, err
	}
	return patient, nil
}

func (service *PatientService) Update(ctx context.Context, id string, input PatientInput) (models.Patient, error) {
	input, err := normalizePatientInput(input)
	if err != nil {
		return models.Patient{}, err
	}

	existing, err := service.find(ctx, id)
	if err != nil {
		return models.Patient{}, err
	}

	updatedAt := stamp(service.now())
	patch := map[string]any{
		"name":       input.Name,
		"email":      input.Email,
		"phone":      input.Phone,
		"birth_date": input.BirthDate,
		"address":    input.Address,
		"updated_at": updatedAt,
	}
	if err := service.store.Update(ctx, store.Patients, existing.ID, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Patient{}, ErrPatientNotFound
		}
		return models.Patient{}, err
	}

	existing.Name = input.Name
	existing.Email = input.Email
	existing.Phone = input.Phone
	existing.BirthDate = input.BirthDate
	existing.Address = input.Address
	existing.UpdatedAt = &updatedAt
	return existing, nil
}

func (service *PatientService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrPatientNotFound
	}
	return service.store.Remove(ctx, store.Patients, id)
}

func (service *PatientService) find(ctx context.Context, id string) (models.Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Patient{}, ErrPatientNotFound
	}

	patients := make([]models.Patient, 0, 1)
	if err := service.store.List(ctx, store.Patients, store.Query{}.Eq("id", id), &patients); err != nil {
		return models.Patient{}, err
	}
	if len(patients) == 0 {
		return models.Patient{}, ErrPatientNotFound
	}
	return patients[0], nil
}

func normalizePatientInput(input PatientInput) (PatientInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	input.BirthDate = strings.TrimSpace(input.BirthDate)
	input.Address = strings.TrimSpace(input.Address)

	switch {
	case input.Name == "":
		return PatientInput{}, invalid("name", ReasonRequired)
	case input.Email == "":
		return PatientInput{}, invalid("email", ReasonRequired)
	case input.Phone == "":
		return PatientInput{}, invalid("phone", ReasonRequired)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return PatientInput{}, invalid("email", ReasonInvalidEmail)
	}
	if input.BirthDate != "" {
		if _, err := time.Parse(dateLayout, input.BirthDate); err != nil {
			return PatientInput{}, invalid("birth_date", ReasonInvalidDate)
		}
	}
	return input, nil
}
