package element

// CheckTransition evaluates the four pressure/temperature transitions of an
// element against the given ambient readings and returns the first one that
// fires, or nil if none do (spec.md §4.D, §4.E "Failure semantics").
// Order: low pressure, high pressure, low temperature, high temperature —
// matching the source's evaluation order so that a particle sitting at two
// simultaneous thresholds resolves deterministically.
func (e *Element) CheckTransition(pressure, temp float32) *Transition {
	if e.LowPressure != nil && pressure < e.LowPressure.Threshold {
		return e.LowPressure
	}
	if e.HighPressure != nil && pressure > e.HighPressure.Threshold {
		return e.HighPressure
	}
	if e.LowTemp != nil && temp < e.LowTemp.Threshold {
		return e.LowTemp
	}
	if e.HighTemp != nil && temp > e.HighTemp.Threshold {
		return e.HighTemp
	}
	return nil
}
