package youtube

// ParseDuration converts an ISO-8601 designator duration as reported by the
// videos endpoint (e.g. "PT1H2M3S", "P1DT2H") into whole seconds.
//
// Malformed input returns 0 together with a *ParseError. Callers must treat
// that as "unknown duration", never as a zero-length item: for content
// classification an unknown duration counts as long-form.
func ParseDuration(s string) (int64, error) {
	if len(s) < 3 || s[0] != 'P' {
		return 0, &ParseError{Input: s}
	}

	var total int64
	inTime := false
	sawComponent := false
	i := 1
	for i < len(s) {
		if s[i] == 'T' {
			if inTime {
				return 0, &ParseError{Input: s}
			}
			inTime = true
			i++
			continue
		}

		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start || i == len(s) {
			return 0, &ParseError{Input: s}
		}

		var n int64
		for _, c := range s[start:i] {
			n = n*10 + int64(c-'0')
		}

		unit := s[i]
		i++
		switch {
		case !inTime && unit == 'W':
			total += n * 7 * 86400
		case !inTime && unit == 'D':
			total += n * 86400
		case inTime && unit == 'H':
			total += n * 3600
		case inTime && unit == 'M':
			total += n * 60
		case inTime && unit == 'S':
			total += n
		default:
			return 0, &ParseError{Input: s}
		}
		sawComponent = true
	}

	if !sawComponent {
		return 0, &ParseError{Input: s}
	}
	return total, nil
}
