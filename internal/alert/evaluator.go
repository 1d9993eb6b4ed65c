package alert

// Evaluate classifies price against optional thresholds.
// LOW is checked before HIGH, so inverted thresholds (low > high) resolve to LOW
// whenever both sides match. Both bounds are inclusive.
func Evaluate(price float64, th Thresholds) State {
	if th.Low != nil && price <= *th.Low {
		return Low
	}
	if th.High != nil && price >= *th.High {
		return High
	}
	return Normal
}
