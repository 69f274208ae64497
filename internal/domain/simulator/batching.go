package simulator

import "github.com/shortlink-org/dispatchsim/internal/domain/dispatch"

// shouldDispatch implements the batching controller: baseline dispatches
// on every tick with non-empty pending; every other strategy waits for
// either the batch window to elapse or any pending order to become
// urgent (within a third of its SLA of breaching deadline).
func (s *Simulator) shouldDispatch(strategy dispatch.Strategy) bool {
	if s.pending.Len() == 0 {
		return false
	}

	if strategy == dispatch.Baseline {
		return true
	}

	if start, ok := s.pending.BatchStartTime(); ok {
		if float64(s.currentTime-start) >= s.cfg.BatchWindowMins {
			return true
		}
	}

	for _, o := range s.pending.Orders() {
		if float64(o.Deadline()-s.currentTime) <= o.EstimatedDeliveryTimeMin/s.cfg.UrgencyFractionDivisor {
			return true
		}
	}

	return false
}
