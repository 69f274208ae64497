// Package loader reads the tabular order/courier datasets the simulator
// runs against, an external data source this codebase treats as out of
// scope beyond its load contract.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shortlink-org/dispatchsim/internal/domain/model"
)

// LoadOrders reads the orders CSV at path: order_id, pickup_lat,
// pickup_lng, dropoff_lat, dropoff_lng, created_time,
// estimated_delivery_time_min. Malformed rows are a fatal error
// identifying path and the 1-indexed row.
func LoadOrders(path string) ([]*model.Order, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	orders := make([]*model.Order, 0, len(records))

	for i, row := range records {
		order, err := parseOrderRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+2, err)
		}

		orders = append(orders, order)
	}

	return orders, nil
}

// LoadCouriers reads the couriers CSV at path: courier_id, courier_lat,
// courier_lng, vehicle_type, bundle_capacity, available_from.
func LoadCouriers(path string) ([]*model.Courier, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	couriers := make([]*model.Courier, 0, len(records))

	for i, row := range records {
		courier, err := parseCourierRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+2, err)
		}

		couriers = append(couriers, courier)
	}

	return couriers, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	// Skip header.
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}

		return nil, fmt.Errorf("read header %s: %w", path, err)
	}

	var out [][]string

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		out = append(out, row)
	}

	return out, nil
}

func parseOrderRow(row []string) (*model.Order, error) {
	if len(row) < 7 {
		return nil, fmt.Errorf("expected 7 columns, got %d", len(row))
	}

	pickupLat, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("pickup_lat: %w", err)
	}

	pickupLng, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	if err != nil {
		return nil, fmt.Errorf("pickup_lng: %w", err)
	}

	dropoffLat, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil {
		return nil, fmt.Errorf("dropoff_lat: %w", err)
	}

	dropoffLng, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
	if err != nil {
		return nil, fmt.Errorf("dropoff_lng: %w", err)
	}

	createdTime, err := ParseTimestamp(row[5])
	if err != nil {
		return nil, fmt.Errorf("created_time: %w", err)
	}

	estimated, err := strconv.Atoi(strings.TrimSpace(row[6]))
	if err != nil {
		return nil, fmt.Errorf("estimated_delivery_time_min: %w", err)
	}

	pickup, err := model.NewLocation(pickupLat, pickupLng)
	if err != nil {
		return nil, err
	}

	dropoff, err := model.NewLocation(dropoffLat, dropoffLng)
	if err != nil {
		return nil, err
	}

	order := model.NewOrder(strings.TrimSpace(row[0]), pickup, dropoff, createdTime, float64(estimated))

	return &order, nil
}

func parseCourierRow(row []string) (*model.Courier, error) {
	if len(row) < 6 {
		return nil, fmt.Errorf("expected 6 columns, got %d", len(row))
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("courier_lat: %w", err)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	if err != nil {
		return nil, fmt.Errorf("courier_lng: %w", err)
	}

	vehicle, err := model.ParseVehicleType(strings.TrimSpace(row[3]))
	if err != nil {
		return nil, err
	}

	capacity, err := strconv.Atoi(strings.TrimSpace(row[4]))
	if err != nil {
		return nil, fmt.Errorf("bundle_capacity: %w", err)
	}

	availableFrom, err := ParseTimestamp(row[5])
	if err != nil {
		return nil, fmt.Errorf("available_from: %w", err)
	}

	loc, err := model.NewLocation(lat, lng)
	if err != nil {
		return nil, err
	}

	courier := model.NewCourier(strings.TrimSpace(row[0]), loc, vehicle, capacity, availableFrom)

	return &courier, nil
}

// ParseTimestamp accepts either "HH:MM:SS" or "YYYY-MM-DD HH:MM:SS" and
// returns minutes-of-day; the date component, when present, is discarded
// since the simulator's clock is a single-day minute-of-day value.
func ParseTimestamp(s string) (model.Minutes, error) {
	s = strings.TrimSpace(s)

	if idx := strings.IndexByte(s, ' '); idx >= 0 {
		s = s[idx+1:]
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}

	seconds, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("invalid second in %q: %w", s, err)
	}

	return model.Minutes(hours*60 + minutes + seconds/60), nil
}
