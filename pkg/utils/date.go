package utils

import (
	"log"
	"time"
)

// TimeNowKST returns the current time in the Korea Standard Time zone, the
// trading calendar every date in this system is anchored to.
func TimeNowKST() time.Time {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return time.Now().In(loc)
}

// DateOf normalizes t to midnight UTC on the same calendar date, so that
// dates read from the database and dates taken from the KST wall clock
// compare on calendar day alone.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CountBusinessDays counts Monday-Friday days strictly after start, up to and
// including end. Public holidays are not considered. Returns 0 when
// end <= start.
func CountBusinessDays(start, end time.Time) int {
	startDate := DateOf(start)
	endDate := DateOf(end)

	count := 0
	for d := startDate.AddDate(0, 0, 1); !d.After(endDate); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}
