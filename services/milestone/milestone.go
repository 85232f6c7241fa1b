package milestone

// Thresholds are the balance levels reported to the client, ascending.
var Thresholds = []int64{10, 100, 1000, 10000, 100000, 500000, 1000000}

// Detect returns the first threshold crossed by a grant of amount that brought
// the balance to newTotal.
func Detect(newTotal, amount int64) (int64, bool) {
	old := newTotal - amount
	for _, m := range Thresholds {
		if old < m && m <= newTotal {
			return m, true
		}
	}
	return 0, false
}
