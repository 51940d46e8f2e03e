package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opsboard/backend/internal/model"
	"github.com/opsboard/backend/internal/testhelpers"
	"github.com/opsboard/backend/internal/types"
)

type movableClock struct{ t time.Time }

func (c *movableClock) Now() time.Time { return c.t }

func newTestFleetService(t *testing.T) (*FleetService, *movableClock) {
	db := testhelpers.SetupTestDB(t)
	clock := &movableClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewFleetService(db, clock, zap.NewNop()), clock
}

func TestStartRentalMarksVehicleRented(t *testing.T) {
	svc, clock := newTestFleetService(t)
	ctx := context.Background()

	vehicle, err := svc.CreateVehicle(ctx, &model.Vehicle{
		Name: "Van 1", PlateNumber: "OPS-201", DailyRate: 80, OdometerKm: 1200,
	})
	require.NoError(t, err)

	rental, err := svc.StartRental(ctx, vehicle.ID, &types.StartRentalRequest{
		RenterName: "Dana Reyes",
		DueAt:      clock.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	assert.True(t, rental.Active())
	assert.Equal(t, 1200.0, rental.StartOdometerKm)
	assert.Equal(t, clock.Now(), rental.StartAt)

	after, err := svc.GetVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleRented, after.Status)
}

func TestStartRentalRejectsUnavailableVehicle(t *testing.T) {
	svc, clock := newTestFleetService(t)
	ctx := context.Background()

	vehicle, err := svc.CreateVehicle(ctx, &model.Vehicle{
		Name: "Van 2", PlateNumber: "OPS-202", Status: model.VehicleMaintenance,
	})
	require.NoError(t, err)

	_, err = svc.StartRental(ctx, vehicle.ID, &types.StartRentalRequest{
		RenterName: "Dana Reyes",
		DueAt:      clock.Now().Add(24 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrVehicleUnavailable)
}

func TestReturnRentalComputesPrice(t *testing.T) {
	svc, clock := newTestFleetService(t)
	ctx := context.Background()

	vehicle, err := svc.CreateVehicle(ctx, &model.Vehicle{
		Name: "Truck 1", PlateNumber: "OPS-203", DailyRate: 100, OdometerKm: 500,
	})
	require.NoError(t, err)

	rental, err := svc.StartRental(ctx, vehicle.ID, &types.StartRentalRequest{
		RenterName: "Dana Reyes",
		DueAt:      clock.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)

	// Two and a half days out bills as three whole days.
	clock.t = clock.t.Add(60 * time.Hour)

	closed, err := svc.ReturnRental(ctx, rental.ID, &types.ReturnRentalRequest{EndOdometerKm: 890})
	require.NoError(t, err)

	assert.False(t, closed.Active())
	assert.Equal(t, 300.0, closed.TotalPrice)
	assert.Equal(t, 890.0, closed.EndOdometerKm)

	after, err := svc.GetVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleAvailable, after.Status)
	assert.Equal(t, 890.0, after.OdometerKm)
}

func TestReturnRentalBillsAtLeastOneDay(t *testing.T) {
	svc, clock := newTestFleetService(t)
	ctx := context.Background()

	vehicle, err := svc.CreateVehicle(ctx, &model.Vehicle{
		Name: "Truck 2", PlateNumber: "OPS-204", DailyRate: 100,
	})
	require.NoError(t, err)

	rental, err := svc.StartRental(ctx, vehicle.ID, &types.StartRentalRequest{
		RenterName: "Dana Reyes",
		DueAt:      clock.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Hour)

	closed, err := svc.ReturnRental(ctx, rental.ID, &types.ReturnRentalRequest{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, closed.TotalPrice)
}

func TestReturnRentalTwiceFails(t *testing.T) {
	svc, clock := newTestFleetService(t)
	ctx := context.Background()

	vehicle, err := svc.CreateVehicle(ctx, &model.Vehicle{
		Name: "Truck 3", PlateNumber: "OPS-205", DailyRate: 50,
	})
	require.NoError(t, err)

	rental, err := svc.StartRental(ctx, vehicle.ID, &types.StartRentalRequest{
		RenterName: "Dana Reyes",
		DueAt:      clock.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.ReturnRental(ctx, rental.ID, &types.ReturnRentalRequest{})
	require.NoError(t, err)

	_, err = svc.ReturnRental(ctx, rental.ID, &types.ReturnRentalRequest{})
	assert.ErrorIs(t, err, ErrRentalAlreadyClosed)
}

func TestListRentalsOverdue(t *testing.T) {
	svc, clock := newTestFleetService(t)
	ctx := context.Background()

	vehicle, err := svc.CreateVehicle(ctx, &model.Vehicle{
		Name: "Van 3", PlateNumber: "OPS-206", DailyRate: 60,
	})
	require.NoError(t, err)

	rental, err := svc.StartRental(ctx, vehicle.ID, &types.StartRentalRequest{
		RenterName: "Dana Reyes",
		DueAt:      clock.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	overdue, err := svc.ListRentals(ctx, "overdue")
	require.NoError(t, err)
	assert.Empty(t, overdue)

	clock.t = clock.t.Add(48 * time.Hour)

	overdue, err = svc.ListRentals(ctx, "overdue")
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, rental.ID, overdue[0].ID)
	assert.True(t, overdue[0].Overdue(clock.Now()))
}
