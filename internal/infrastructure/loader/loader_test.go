package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want model.Minutes
	}{
		{"17:00:00", model.Minutes(17 * 60)},
		{"2024-01-01 17:00:00", model.Minutes(17 * 60)},
		{"00:00:30", model.Minutes(0)},
		{"09:05:00", model.Minutes(9*60 + 5)},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseTimestamp("garbage")
	assert.Error(t, err)
}

func TestLoadOrders_HappyPath(t *testing.T) {
	csv := "order_id,pickup_lat,pickup_lng,dropoff_lat,dropoff_lng,created_time,estimated_delivery_time_min\n" +
		"o1,25.2854,51.5310,25.2900,51.5350,17:00:00,30\n" +
		"o2,25.1000,51.1000,25.2000,51.2000,17:05:00,45\n"

	path := writeTemp(t, "orders.csv", csv)

	orders, err := LoadOrders(path)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "o1", orders[0].ID)
	assert.Equal(t, model.Minutes(17*60), orders[0].CreatedTime)
	assert.Equal(t, 30.0, orders[0].EstimatedDeliveryTimeMin)
}

func TestLoadOrders_MalformedRowReportsLineNumber(t *testing.T) {
	csv := "order_id,pickup_lat,pickup_lng,dropoff_lat,dropoff_lng,created_time,estimated_delivery_time_min\n" +
		"o1,25.2854,51.5310,25.2900,51.5350,17:00:00,30\n" +
		"o2,not-a-number,51.1000,25.2000,51.2000,17:05:00,45\n"

	path := writeTemp(t, "orders.csv", csv)

	_, err := LoadOrders(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestLoadCouriers_HappyPath(t *testing.T) {
	csv := "courier_id,courier_lat,courier_lng,vehicle_type,bundle_capacity,available_from\n" +
		"c1,25.2854,51.5310,motorbike,2,17:00:00\n"

	path := writeTemp(t, "couriers.csv", csv)

	couriers, err := LoadCouriers(path)
	require.NoError(t, err)
	require.Len(t, couriers, 1)

	assert.Equal(t, "c1", couriers[0].ID)
	assert.Equal(t, model.VehicleMotorbike, couriers[0].Vehicle)
	assert.Equal(t, 2, couriers[0].Capacity)
}

func TestLoadCouriers_UnknownVehicleFails(t *testing.T) {
	csv := "courier_id,courier_lat,courier_lng,vehicle_type,bundle_capacity,available_from\n" +
		"c1,25.2854,51.5310,spaceship,2,17:00:00\n"

	path := writeTemp(t, "couriers.csv", csv)

	_, err := LoadCouriers(path)
	assert.Error(t, err)
}

func TestLoadOrders_MissingFile(t *testing.T) {
	_, err := LoadOrders(filepath.Join(t.TempDir(), "does-not-exist.csv"))
	assert.Error(t, err)
}
