package flow

import "strconv"

// SafePIN reports whether a 4-digit PIN passes the strength rules:
// no repeated single digit, no ascending +1 run, and nothing that reads
// as a calendar date in MMDD or DDMM form.
func SafePIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, ch := range pin {
		if ch < '0' || ch > '9' {
			return false
		}
	}

	// 1111, 0000, ...
	same := true
	for i := 1; i < 4; i++ {
		if pin[i] != pin[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}

	// 0123, 1234, ... (strict +1 runs only; 7890 is allowed)
	sequential := true
	for i := 1; i < 4; i++ {
		if pin[i] != pin[i-1]+1 {
			sequential = false
			break
		}
	}
	if sequential {
		return false
	}

	// Birthday-shaped values.
	head, _ := strconv.Atoi(pin[:2])
	tail, _ := strconv.Atoi(pin[2:])
	if head >= 1 && head <= 12 && tail >= 1 && tail <= 31 {
		return false
	}
	if tail >= 1 && tail <= 12 && head >= 1 && head <= 31 {
		return false
	}

	return true
}
