package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"autoservice-agent/internal/domain"
)

type mockStore struct {
	vehicles  map[string]domain.Vehicle
	getErr    error
	createErr error
	created   []domain.Vehicle
}

func newMockStore() *mockStore {
	return &mockStore{vehicles: map[string]domain.Vehicle{}}
}

func (m *mockStore) GetVehicle(_ context.Context, vin string) (*domain.Vehicle, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.vehicles[vin]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *mockStore) CreateVehicle(_ context.Context, v domain.Vehicle) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.vehicles[v.VIN] = v
	m.created = append(m.created, v)
	return nil
}

func storeWithCamry() *mockStore {
	s := newMockStore()
	s.vehicles["ABC123"] = domain.Vehicle{VIN: "ABC123", Make: "Toyota", Model: "Camry", Year: 2022}
	return s
}

func mustNewAssistant(t *testing.T, s VehicleStore) *Assistant {
	t.Helper()
	a, err := NewAssistant(s)
	require.NoError(t, err)
	return a
}

func TestNewAssistant_NilStore(t *testing.T) {
	_, err := NewAssistant(nil)
	require.Error(t, err)
}

func TestExecute_LookupCar_Found(t *testing.T) {
	a := mustNewAssistant(t, storeWithCamry())

	out, err := a.Execute(context.Background(), domain.Directive{
		Function:  ActionLookupCar,
		Arguments: map[string]any{"vin": "ABC123"},
	})
	require.NoError(t, err)
	require.Equal(t, "Found: 2022 Toyota Camry (VIN: ABC123)", out)
	require.True(t, a.HasVehicle())
	require.Contains(t, a.VehicleSummary(), "ABC123")
}

func TestExecute_LookupCar_NotFound(t *testing.T) {
	a := mustNewAssistant(t, newMockStore())

	out, err := a.Execute(context.Background(), domain.Directive{
		Function:  ActionLookupCar,
		Arguments: map[string]any{"vin": "MISSING"},
	})
	require.NoError(t, err)
	require.Equal(t, "No car found with that VIN", out)
	require.False(t, a.HasVehicle())
}

func TestExecute_LookupCar_StoreError(t *testing.T) {
	s := newMockStore()
	s.getErr = errors.New("throttled")
	a := mustNewAssistant(t, s)

	_, err := a.Execute(context.Background(), domain.Directive{
		Function:  ActionLookupCar,
		Arguments: map[string]any{"vin": "ABC123"},
	})
	var ucErr *Error
	require.ErrorAs(t, err, &ucErr)
	require.Equal(t, ErrorInternal, ucErr.Code)
}

func TestExecute_CreateCarProfile(t *testing.T) {
	s := newMockStore()
	a := mustNewAssistant(t, s)

	out, err := a.Execute(context.Background(), domain.Directive{
		Function: ActionCreateCarProfile,
		Arguments: map[string]any{
			"vin":   "XYZ789",
			"make":  "Honda",
			"model": "Accord",
			"year":  float64(2020),
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Created profile for 2020 Honda Accord", out)
	require.Equal(t, []domain.Vehicle{{VIN: "XYZ789", Make: "Honda", Model: "Accord", Year: 2020}}, s.created)
	require.True(t, a.HasVehicle())
}

func TestExecute_CreateCarProfile_PermissiveArgs(t *testing.T) {
	s := newMockStore()
	a := mustNewAssistant(t, s)

	// Year quoted as a string, model missing entirely.
	out, err := a.Execute(context.Background(), domain.Directive{
		Function: ActionCreateCarProfile,
		Arguments: map[string]any{
			"vin":  "XYZ789",
			"make": "Honda",
			"year": "2020",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Created profile for 2020 Honda ", out)
	require.Equal(t, domain.Vehicle{VIN: "XYZ789", Make: "Honda", Year: 2020}, s.created[0])
}

func TestExecute_LookupCarByPlate(t *testing.T) {
	a := mustNewAssistant(t, newMockStore())

	out, err := a.Execute(context.Background(), domain.Directive{
		Function:  ActionLookupCarByPlate,
		Arguments: map[string]any{"license_plate": "8ABC123", "state": "CA"},
	})
	require.NoError(t, err)
	require.Contains(t, out, "Vehicle found")
}

func TestExecute_NeverErrorsOnDirectiveContent(t *testing.T) {
	cases := []struct {
		name      string
		directive domain.Directive
		contains  string
	}{
		{name: "unknown action", directive: domain.Directive{Function: "self_destruct"}, contains: "Unknown function: self_destruct"},
		{name: "empty name", directive: domain.Directive{}, contains: "Unknown function:"},
		{name: "nil arguments", directive: domain.Directive{Function: ActionLookupCar}, contains: "No car found"},
		{name: "mistyped vin", directive: domain.Directive{Function: ActionLookupCar, Arguments: map[string]any{"vin": 42}}, contains: "No car found"},
		{name: "mistyped year", directive: domain.Directive{Function: ActionCreateCarProfile, Arguments: map[string]any{"vin": "V", "year": true}}, contains: "Created profile for 0"},
	}

	a := mustNewAssistant(t, newMockStore())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := a.Execute(context.Background(), tc.directive)
			require.NoError(t, err)
			require.Contains(t, out, tc.contains)
		})
	}
}

func TestIntArg(t *testing.T) {
	require.Equal(t, 2022, intArg(map[string]any{"year": float64(2022)}, "year"))
	require.Equal(t, 2022, intArg(map[string]any{"year": 2022}, "year"))
	require.Equal(t, 2022, intArg(map[string]any{"year": " 2022 "}, "year"))
	require.Equal(t, 0, intArg(map[string]any{"year": "soon"}, "year"))
	require.Equal(t, 0, intArg(nil, "year"))
}
