package finance

import "time"

// PayoutDelayBusinessDays is how many business days after the event a payout is due.
const PayoutDelayBusinessDays = 3

// IsBusinessDay reports whether d falls Monday through Friday. No holidays are considered.
func IsBusinessDay(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// AddBusinessDays walks forward from d one calendar day at a time and returns the
// n-th business day reached. d itself is never counted. n below 1 is treated as 1.
func AddBusinessDays(d time.Time, n int) time.Time {
	if n < 1 {
		n = 1
	}
	result := d
	for counted := 0; counted < n; {
		result = result.AddDate(0, 0, 1)
		if IsBusinessDay(result) {
			counted++
		}
	}
	return result
}

// PayoutDate returns the payout date for an event held on eventDate.
func PayoutDate(eventDate time.Time) time.Time {
	return AddBusinessDays(eventDate, PayoutDelayBusinessDays)
}
