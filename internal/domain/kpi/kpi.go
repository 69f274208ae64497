// Package kpi aggregates fleet-level key performance indicators from a
// completed simulation run.
package kpi

import (
	"math"
	"sort"

	"github.com/shortlink-org/dispatchsim/internal/domain/model"
	"github.com/shortlink-org/dispatchsim/internal/domain/simulator"
)

// Report is the full KPI output, snake_case field names matching the
// output contract so it serializes directly to the documented JSON shape.
type Report struct {
	OrdersDelivered int     `json:"orders_delivered"`
	OrdersTotal     int     `json:"orders_total"`
	SuccessRate     float64 `json:"success_rate"`

	DurationMeanMin   float64 `json:"duration_mean_min"`
	DurationMedianMin float64 `json:"duration_median_min"`
	DurationMinMin    float64 `json:"duration_min_min"`
	DurationMaxMin    float64 `json:"duration_max_min"`
	DurationStdevMin  float64 `json:"duration_stdev_min"`
	DurationP90Min    float64 `json:"duration_p90_min"`
	DurationP95Min    float64 `json:"duration_p95_min"`
	DurationP99Min    float64 `json:"duration_p99_min"`

	TotalDistanceKm     float64 `json:"total_distance_km"`
	DistancePerOrderKm  float64 `json:"distance_per_order_km"`
	DistancePerDriverKm float64 `json:"distance_per_driver_km"`

	OnTimeCount int     `json:"on_time_count"`
	OnTimeRate  float64 `json:"on_time_rate"`
	Late30Count int     `json:"late_30_count"`
	Late30Rate  float64 `json:"late_30_rate"`
	Late45Count int     `json:"late_45_count"`
	Late45Rate  float64 `json:"late_45_rate"`
	Late60Count int     `json:"late_60_count"`
	Late60Rate  float64 `json:"late_60_rate"`

	FleetUtilization       float64 `json:"fleet_utilization"`
	TotalDriverTicks       int     `json:"total_driver_ticks"`
	BusyDriverTicks        int     `json:"busy_driver_ticks"`
	DriversUsed            int     `json:"drivers_used"`
	FleetSize              int     `json:"fleet_size"`
	OrdersPerDriver        float64 `json:"orders_per_driver"`
	ActiveDriverEfficiency float64 `json:"active_driver_efficiency"`

	RouteHistory map[string][]model.Location `json:"route_history"`
}

const (
	onTimeThresholdMin = 30.0
	late45ThresholdMin = 45.0
	late60ThresholdMin = 60.0
)

// Compute builds a Report from a finished simulator run.
func Compute(sim *simulator.Simulator, ordersTotal int) Report {
	missions := sim.CompletedMissions()

	durations := make([]float64, len(missions))
	for i, m := range missions {
		durations[i] = float64(m.DropoffTime - m.CreatedTime)
	}

	sorted := append([]float64(nil), durations...)
	sort.Float64s(sorted)

	onTime, late30, late45, late60 := 0, 0, 0, 0

	for _, d := range durations {
		switch {
		case d <= onTimeThresholdMin:
			onTime++
		case d > late60ThresholdMin:
			late60++
			late45++
			late30++
		case d > late45ThresholdMin:
			late45++
			late30++
		case d > onTimeThresholdMin:
			late30++
		}
	}

	delivered := len(missions)
	fleetSize := len(sim.Couriers())
	driversUsed := sim.DriversActivatedCount()

	r := Report{
		OrdersDelivered: delivered,
		OrdersTotal:     ordersTotal,
		SuccessRate:     ratio(delivered, ordersTotal),

		DurationMeanMin:   mean(durations),
		DurationMedianMin: median(sorted),
		DurationMinMin:    minOf(sorted),
		DurationMaxMin:    maxOf(sorted),
		DurationStdevMin:  stdev(durations),
		DurationP90Min:    percentile(sorted, 90),
		DurationP95Min:    percentile(sorted, 95),
		DurationP99Min:    percentile(sorted, 99),

		TotalDistanceKm:     sim.FleetDistance(),
		DistancePerOrderKm:  divide(sim.FleetDistance(), float64(delivered)),
		DistancePerDriverKm: divide(sim.FleetDistance(), float64(driversUsed)),

		OnTimeCount: onTime,
		OnTimeRate:  ratio(onTime, delivered),
		Late30Count: late30,
		Late30Rate:  ratio(late30, delivered),
		Late45Count: late45,
		Late45Rate:  ratio(late45, delivered),
		Late60Count: late60,
		Late60Rate:  ratio(late60, delivered),

		FleetUtilization:       divide(float64(sim.BusyDriverTicks()), float64(sim.DriverTicks())),
		TotalDriverTicks:       sim.DriverTicks(),
		BusyDriverTicks:        sim.BusyDriverTicks(),
		DriversUsed:            driversUsed,
		FleetSize:              fleetSize,
		OrdersPerDriver:        divide(float64(delivered), float64(fleetSize)),
		ActiveDriverEfficiency: divide(float64(delivered), float64(driversUsed)),

		RouteHistory: sim.RouteHistory(),
	}

	return r
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}

	sum := 0.0
	for _, x := range xs {
		sum += x
	}

	return sum / float64(len(xs))
}

// stdev is the sample standard deviation (n-1 denominator), zero for
// fewer than two samples.
func stdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}

	m := mean(xs)
	sumSq := 0.0

	for _, x := range xs {
		sumSq += (x - m) * (x - m)
	}

	return math.Sqrt(sumSq / float64(len(xs)-1))
}

// median is the true median: the middle sorted value, or the mean of the
// two middle values on an even count. The pXX metrics use the
// truncated-index percentile below instead; the two deliberately differ.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	if n%2 == 1 {
		return sorted[n/2]
	}

	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	idx := int(float64(len(sorted)) * p / 100)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	return sorted[idx]
}

func minOf(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	return sorted[0]
}

func maxOf(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	return sorted[len(sorted)-1]
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}

	return float64(n) / float64(d)
}

func divide(n, d float64) float64 {
	if d == 0 {
		return 0
	}

	return n / d
}
