/*
Dispatch simulator

Runs one tick-driven delivery dispatch simulation over a dataset of
orders and couriers, under a chosen matching strategy, and prints the
resulting fleet KPI report as JSON.
*/
package main

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/shortlink-org/go-sdk/graceful_shutdown"

	"github.com/shortlink-org/dispatchsim/internal/di"
	"github.com/shortlink-org/dispatchsim/internal/domain/dispatch"
	"github.com/shortlink-org/dispatchsim/internal/domain/kpi"
	"github.com/shortlink-org/dispatchsim/internal/domain/simulator"
	"github.com/shortlink-org/dispatchsim/internal/infrastructure/loader"
)

func main() {
	service, cleanup, err := di.InitializeService()
	if err != nil {
		panic(err)
	}
	defer cleanup()

	strategy, err := dispatch.ParseStrategy(service.Config.Strategy)
	if err != nil {
		service.Log.Error("invalid strategy", err, "strategy", service.Config.Strategy)
		os.Exit(1)
	}

	service.Log.Info("dispatch simulator initialized",
		"strategy", string(strategy),
		"orders_file", service.Config.OrdersFile,
		"couriers_file", service.Config.CouriersFile,
	)

	orders, err := loader.LoadOrders(service.Config.OrdersFile)
	if err != nil {
		service.Log.Error("failed to load orders", err)
		os.Exit(1)
	}

	couriers, err := loader.LoadCouriers(service.Config.CouriersFile)
	if err != nil {
		service.Log.Error("failed to load couriers", err)
		os.Exit(1)
	}

	// The master list must be sorted by created_time (ties by insertion
	// order), the invariant the simulator's injection step relies on.
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedTime < orders[j].CreatedTime
	})

	simCfg := simulator.Config{
		StartTime:              service.Config.StartTime,
		EndTime:                service.Config.SimulationEndTime,
		SpeedMinutes:           service.Config.SimulationSpeedMinutes,
		ServiceTimeMins:        service.Config.ServiceTimeMins,
		BatchWindowMins:        service.Config.BatchWindowMins,
		UrgencyFractionDivisor: service.Config.UrgencyFractionDivisor,
	}

	sim := simulator.New(simCfg, service.Distance, service.Engine, service.Sink, service.Log, orders, couriers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		runCtx, endSpan := service.Tracer.StartSpan(ctx, "simulation.run")
		defer endSpan()

		start := time.Now()
		runErr := sim.Run(runCtx, strategy)
		service.Metrics.DispatchDuration.Observe(time.Since(start).Seconds())
		done <- runErr
	}()

	interrupted := make(chan struct{})

	go func() {
		signal := graceful_shutdown.GracefulShutdown()
		service.Log.Warn("interrupted before simulation finished", "signal", signal.String())
		close(interrupted)
	}()

	select {
	case runErr := <-done:
		if runErr != nil {
			service.Log.Error("simulation run failed", runErr)
			os.Exit(1)
		}
	case <-interrupted:
		cancel()
		<-done
		service.Log.Warn("simulation aborted, reporting partial KPIs")
	}

	report := kpi.Compute(sim, len(orders))

	service.Metrics.DriversUsed.Set(float64(report.DriversUsed))
	service.Metrics.OrdersDelivered.Add(float64(report.OrdersDelivered))

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		service.Log.Error("failed to marshal kpi report", err)
		os.Exit(1)
	}

	os.Stdout.Write(append(out, '\n')) //nolint:errcheck // best-effort write to stdout

	service.Log.Info("dispatch simulator finished",
		"orders_delivered", report.OrdersDelivered,
		"drivers_used", report.DriversUsed,
		"active_driver_efficiency", report.ActiveDriverEfficiency,
	)
}
