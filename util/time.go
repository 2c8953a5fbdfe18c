package util

import "time"

func SecondsDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
