package dispatch

import "errors"

// ErrUnknownStrategy is returned when a strategy name outside the stable
// string API ("baseline", "sequential", "combinatorial", "adaptive") is
// requested.
var ErrUnknownStrategy = errors.New("dispatch: unknown strategy name")

// ParseStrategy maps a strategy name to its Strategy value.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case Baseline, Sequential, Combinatorial, Adaptive:
		return Strategy(name), nil
	default:
		return "", ErrUnknownStrategy
	}
}
