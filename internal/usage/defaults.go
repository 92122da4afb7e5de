package usage

import "time"

const resetWindow = 7 * 24 * time.Hour

func defaultUsage() Usage {
	return Usage{
		Plan:     "Free",
		Limit:    20,
		Used:     0,
		ResetsAt: time.Now().UTC().Add(resetWindow),
	}
}
