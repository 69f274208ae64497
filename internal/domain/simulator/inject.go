package simulator

import "context"

// injectOrders moves every master-list order whose created_time has
// arrived into the pending queue, opening (or extending) the current
// batch window.
func (s *Simulator) injectOrders(ctx context.Context) {
	i := 0

	for i < len(s.masterOrders) && s.masterOrders[i].CreatedTime <= s.currentTime {
		order := s.masterOrders[i]

		s.pending.StartBatch(s.currentTime)
		s.pending.Append(order)
		s.recentOrderTimes = append(s.recentOrderTimes, order.CreatedTime)

		if s.sink != nil {
			s.sink.OrderInjected(ctx, order)
		}

		i++
	}

	s.masterOrders = s.masterOrders[i:]
}
