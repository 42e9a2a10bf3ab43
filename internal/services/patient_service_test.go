package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/dentclinic/internal/store"
)

func newPatientService(persistence store.Persistence) *PatientService {
	service := NewPatientService(persistence)
	service.now = fixedClock
	return service
}

func seedPatients(t *testing.T, service *PatientService) {
	t.Helper()
	for _, input := range []PatientInput{
		{Name: "Maria da Silva", Email: "maria@example.com", Phone: "11 98888-1111"},
		{Name: "João Pereira", Email: "joao@example.com", Phone: "21 97777-2222"},
		{Name: "Ana Oliveira", Email: "ana.o@clinic.com", Phone: "31 96666-3333"},
	} {
		_, err := service.Create(context.Background(), input)
		require.NoError(t, err)
	}
}

func TestPatientListOrdersByNameAndSearches(t *testing.T) {
	service := newPatientService(newLocalStore())
	seedPatients(t, service)
	ctx := context.Background()

	all, err := service.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Ana Oliveira", all[0].Name)
	assert.Equal(t, "João Pereira", all[1].Name)
	assert.Equal(t, "Maria da Silva", all[2].Name)

	byName, err := service.List(ctx, "MARIA")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Maria da Silva", byName[0].Name)

	byEmail, err := service.List(ctx, "clinic.com")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, "Ana Oliveira", byEmail[0].Name)

	byPhone, err := service.List(ctx, "97777")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "João Pereira", byPhone[0].Name)

	none, err := service.List(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPatientSuggestMatchesNameOnly(t *testing.T) {
	service := newPatientService(newLocalStore())
	seedPatients(t, service)
	ctx := context.Background()

	suggestions, err := service.Suggest(ctx, "ol")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Ana Oliveira", suggestions[0].Name)

	suggestions, err = service.Suggest(ctx, "example")
	require.NoError(t, err)
	assert.Empty(t, suggestions)

	suggestions, err = service.Suggest(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestPatientCreateValidatesRequiredFields(t *testing.T) {
	failing := &failingStore{}
	service := newPatientService(failing)
	ctx := context.Background()

	cases := map[string]PatientInput{
		"name":       {Email: "a@x.com", Phone: "1"},
		"email":      {Name: "Ana", Phone: "1"},
		"phone":      {Name: "Ana", Email: "a@x.com"},
		"birth_date": {Name: "Ana", Email: "a@x.com", Phone: "1", BirthDate: "04/05/1990"},
	}
	for field, input := range cases {
		_, err := service.Create(ctx, input)
		validationErr, ok := err.(*ValidationError)
		require.True(t, ok, "expected validation error for %s, got %v", field, err)
		assert.Equal(t, field, validationErr.Field)
	}

	_, err := service.Create(ctx, PatientInput{Name: "Ana", Email: "not-an-email", Phone: "1"})
	require.True(t, IsValidationError(err))
	assert.Zero(t, failing.calls)
}

func TestPatientUpdateRefreshesUpdatedAt(t *testing.T) {
	service := newPatientService(newLocalStore())
	ctx := context.Background()

	created, err := service.Create(ctx, PatientInput{Name: "Ana", Email: "ana@example.com", Phone: "1"})
	require.NoError(t, err)
	assert.Nil(t, created.UpdatedAt)

	updated, err := service.Update(ctx, created.ID, PatientInput{
		Name:      "Ana Souza",
		Email:     "ana@example.com",
		Phone:     "2",
		BirthDate: "1990-05-04",
		Address:   "Rua A, 10",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, fixedNow, *updated.UpdatedAt)

	stored, err := service.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, updated, stored[0])

	_, err = service.Update(ctx, "missing", PatientInput{Name: "X", Email: "x@x.com", Phone: "3"})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestPatientDelete(t *testing.T) {
	service := newPatientService(newLocalStore())
	ctx := context.Background()

	created, err := service.Create(ctx, PatientInput{Name: "Ana", Email: "ana@example.com", Phone: "1"})
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID))
	remaining, err := service.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	assert.ErrorIs(t, service.Delete(ctx, " "), ErrPatientNotFound)
}
