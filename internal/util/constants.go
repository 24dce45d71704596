package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

const (
	DefaultPassingPercentage = 50
	DefaultMaxAttempts       = 1
)
