package kpi

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/dispatchsim/internal/domain/bundle"
	"github.com/shortlink-org/dispatchsim/internal/domain/cost"
	"github.com/shortlink-org/dispatchsim/internal/domain/dispatch"
	"github.com/shortlink-org/dispatchsim/internal/domain/geo"
	"github.com/shortlink-org/dispatchsim/internal/domain/model"
	"github.com/shortlink-org/dispatchsim/internal/domain/simulator"
	"github.com/shortlink-org/dispatchsim/internal/domain/tsp"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.Equal(t, 2.0, mean([]float64{1, 2, 3}))
}

func TestStdev_SampleFormula(t *testing.T) {
	assert.Equal(t, 0.0, stdev(nil))
	assert.Equal(t, 0.0, stdev([]float64{7}))
	assert.InDelta(t, 0.0, stdev([]float64{5, 5, 5}), 1e-9)

	// Sample stdev of {1,2,3,4}: sqrt(5/3), not the population sqrt(5/4).
	assert.InDelta(t, math.Sqrt(5.0/3.0), stdev([]float64{1, 2, 3, 4}), 1e-9)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, median(nil))
	assert.Equal(t, 3.0, median([]float64{1, 2, 3, 4, 5}))

	// Even-length input averages the two middle values; the
	// truncated-index percentile would return 3 here.
	assert.Equal(t, 2.5, median([]float64{1, 2, 3, 4}))
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 1.0, percentile(sorted, 0))
	assert.Equal(t, 5.0, percentile(sorted, 100))
	assert.Equal(t, 3.0, percentile(sorted, 50))
	assert.Equal(t, 0.0, percentile(nil, 50))
}

// TestPercentile_NearestRankNotInterpolated pins the truncated-index
// (nearest-rank) formula against a 7-element array where p90 would
// diverge from linear interpolation: int(7*0.9) = 6 selects sorted[6] == 7,
// whereas interpolating between sorted[5] and sorted[6] would give 6.4.
func TestPercentile_NearestRankNotInterpolated(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 6, 7}
	assert.Equal(t, 7.0, percentile(sorted, 90))
}

func TestRatioAndDivide(t *testing.T) {
	assert.Equal(t, 0.5, ratio(1, 2))
	assert.Equal(t, 0.0, ratio(1, 0))
	assert.Equal(t, 2.0, divide(4, 2))
	assert.Equal(t, 0.0, divide(4, 0))
}

// TestCompute_SingleOrderSingleCourier runs a minimal one-order scenario
// through the full simulator and checks the aggregate matches the
// documented single-order, single-courier literal scenario.
func TestCompute_SingleOrderSingleCourier(t *testing.T) {
	dist := geo.NewHaversine(35)
	oracle := tsp.NewOracle(dist)
	costFn := cost.NewFunction(dist, cost.Config{
		ServiceTimeMins:        5,
		MaxDeliveryTimeMins:    60,
		WDistance:              1.0,
		WDelay:                 1.5,
		BundleDiscountPerOrder: 0.25,
		PenaltyMotorbike:       1.0,
		PenaltyBike:            1.2,
		PenaltyCar:             1.4,
		DelayCapMinsPerOrder:   20,
	})
	engine := dispatch.NewEngine(dist, oracle, costFn, dispatch.Config{
		ServiceTimeMins:         5,
		HighLoadThreshold:       2.0,
		CombinatorialWindowMins: 5,
		Bundle:                  bundle.Config{MaxBundleSize: 3, MaxPickupDistanceKm: 0.5},
	})

	pickup := model.MustNewLocation(25.2854, 51.5310)
	dropoff := model.MustNewLocation(25.2900, 51.5350)
	order := model.NewOrder("o1", pickup, dropoff, 0, 30)
	courier := model.NewCourier("c1", pickup, model.VehicleMotorbike, 2, 0)

	simCfg := simulator.Config{
		StartTime:              0,
		EndTime:                120,
		SpeedMinutes:           1,
		ServiceTimeMins:        5,
		BatchWindowMins:        1,
		UrgencyFractionDivisor: 3,
	}

	sim := simulator.New(simCfg, dist, engine, nil, nil, []*model.Order{&order}, []*model.Courier{&courier})
	require.NoError(t, sim.Run(context.Background(), dispatch.Baseline))

	report := Compute(sim, 1)

	assert.Equal(t, 1, report.OrdersDelivered)
	assert.Equal(t, 1, report.OrdersTotal)
	assert.Equal(t, 1.0, report.SuccessRate)
	assert.Equal(t, 1, report.DriversUsed)
	assert.Greater(t, report.TotalDistanceKm, 0.0)
}
