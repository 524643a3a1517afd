package threadpool

import (
	"strconv"
)

// Priority orders pending tasks. Higher values are dispatched first.
//
// Low, Medium and High are the named classes, but any value is accepted
// and compares numerically.
type Priority uint8

const (
	Low    Priority = 10
	Medium Priority = 20
	High   Priority = 30

	DefaultPriority = Medium
)

func (p Priority) String() string {
	switch p {
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	default:
		return "Priority(" + strconv.Itoa(int(p)) + ")"
	}
}
