package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"autoservice-agent/internal/domain"
)

// Action names accepted by Assistant.Execute. The argument shapes are part
// of the directive wire format the model is prompted to emit:
//
//	lookup_car                   {vin: string}
//	create_car_profile           {vin: string, make: string, model: string, year: integer}
//	lookup_car_by_license_plate  {license_plate: string, state: string}
const (
	ActionLookupCar        = "lookup_car"
	ActionCreateCarProfile = "create_car_profile"
	ActionLookupCarByPlate = "lookup_car_by_license_plate"
)

// VehicleStore is the record store consumed by Assistant.
type VehicleStore interface {
	GetVehicle(ctx context.Context, vin string) (*domain.Vehicle, error)
	CreateVehicle(ctx context.Context, v domain.Vehicle) error
}

// Assistant executes backend actions against the record store and holds the
// session's at-most-one current vehicle reference. It is owned by a single
// session and is not safe for concurrent use.
type Assistant struct {
	store   VehicleStore
	current *domain.Vehicle
}

// NewAssistant creates an Assistant with no current vehicle.
func NewAssistant(store VehicleStore) (*Assistant, error) {
	if store == nil {
		return nil, errors.New("usecase: vehicle store must not be nil")
	}
	return &Assistant{store: store}, nil
}

// HasVehicle reports whether a lookup or creation has associated a vehicle
// with the session.
func (a *Assistant) HasVehicle() bool {
	return a.current != nil
}

// VehicleSummary describes the current vehicle for diagnostics.
func (a *Assistant) VehicleSummary() string {
	if a.current == nil {
		return "No car profile loaded"
	}
	return fmt.Sprintf("VIN: %s, Make: %s, Model: %s, Year: %d",
		a.current.VIN, a.current.Make, a.current.Model, a.current.Year)
}

// Execute runs exactly one action for the directive and returns a
// human-readable outcome string. Unknown action names and missing or
// mistyped arguments never produce an error; the only error path is a
// record store failure, which the turn boundary absorbs.
func (a *Assistant) Execute(ctx context.Context, d domain.Directive) (string, error) {
	switch d.Function {
	case ActionLookupCar:
		return a.lookupCar(ctx, strArg(d.Arguments, "vin"))
	case ActionCreateCarProfile:
		return a.createCarProfile(ctx, domain.Vehicle{
			VIN:   strArg(d.Arguments, "vin"),
			Make:  strArg(d.Arguments, "make"),
			Model: strArg(d.Arguments, "model"),
			Year:  intArg(d.Arguments, "year"),
		})
	case ActionLookupCarByPlate:
		return a.lookupCarByPlate(strArg(d.Arguments, "license_plate"), strArg(d.Arguments, "state")), nil
	default:
		return fmt.Sprintf("Unknown function: %s", d.Function), nil
	}
}

func (a *Assistant) lookupCar(ctx context.Context, vin string) (string, error) {
	// The record store rejects an empty key; a VIN-less directive is still a
	// well-formed request and answers like any other miss.
	if strings.TrimSpace(vin) == "" {
		return "No car found with that VIN", nil
	}
	v, err := a.store.GetVehicle(ctx, vin)
	if err != nil {
		return "", newError(ErrorInternal, "record_store_read_error", err)
	}
	if v == nil {
		return "No car found with that VIN", nil
	}
	a.current = v
	return fmt.Sprintf("Found: %d %s %s (VIN: %s)", v.Year, v.Make, v.Model, v.VIN), nil
}

func (a *Assistant) createCarProfile(ctx context.Context, v domain.Vehicle) (string, error) {
	if strings.TrimSpace(v.VIN) == "" {
		return "A VIN is required to create a car profile", nil
	}
	if err := a.store.CreateVehicle(ctx, v); err != nil {
		return "", newError(ErrorInternal, "record_store_write_error", err)
	}
	a.current = &v
	return fmt.Sprintf("Created profile for %d %s %s", v.Year, v.Make, v.Model), nil
}

// lookupCarByPlate answers alternate-key lookups. The backing registry is
// external to the record store and not yet wired in; this returns a canned
// summary until a real plate registry query replaces it.
func (a *Assistant) lookupCarByPlate(_, _ string) string {
	return "Vehicle found: 2020 Honda Accord (VIN: XYZ789)"
}

// strArg reads a string argument, coercing absence and wrong types to "".
func strArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	s, _ := args[key].(string)
	return s
}

// intArg reads an integer argument permissively: JSON numbers arrive as
// float64, and models occasionally quote years as strings. Anything else
// coerces to zero.
func intArg(args map[string]any, key string) int {
	if args == nil {
		return 0
	}
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
