package runway

// DetermineTrafficFlow buckets the mean active-runway heading into one
// of eight 45-degree octants. A designator's numeric part times ten is
// its magnetic heading. No parseable headings yields UNKNOWN.
func DetermineTrafficFlow(arriving, departing designatorSet) Flow {
	var sum, count int
	seen := map[string]struct{}{}
	for _, set := range []designatorSet{arriving, departing} {
		for d := range set {
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			num, _, ok := designatorParts(d)
			if !ok {
				continue
			}
			sum += num * 10
			count++
		}
	}

	if count == 0 {
		return FlowUnknown
	}

	avg := float64(sum) / float64(count)

	switch {
	case avg >= 337.5 || avg < 22.5:
		return FlowNorth
	case avg < 67.5:
		return FlowNortheast
	case avg < 112.5:
		return FlowEast
	case avg < 157.5:
		return FlowSoutheast
	case avg < 202.5:
		return FlowSouth
	case avg < 247.5:
		return FlowSouthwest
	case avg < 292.5:
		return FlowWest
	case avg < 337.5:
		return FlowNorthwest
	}
	return FlowUnknown
}
