package model

// Minutes is a monotonic minute-of-day value, used for every timestamp in
// the simulation core (created_time, deadline, ETA, ...). Converting to and
// from wall-clock strings happens only at the loader/CLI boundary, per the
// "avoid wrap-around subtleties" guidance this core follows.
type Minutes float64
