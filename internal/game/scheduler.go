package game

import "time"

// Task is a pending scheduled callback.
type Task interface {
	// Stop cancels the task. It reports false if the task already ran or was stopped.
	Stop() bool
}

// Scheduler runs deferred callbacks. The engine owns every Task it creates and
// stops them on teardown.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

// WallClock schedules callbacks on real time via time.AfterFunc.
func WallClock() Scheduler {
	return wallClock{}
}
