package game

import "time"

// Config holds the round timing and scoring constants.
type Config struct {
	TimeLimit    int           // time units per question
	TickInterval time.Duration // wall-clock length of one time unit
	AdvanceDelay time.Duration // feedback pause before the next question
	BasePoints   int
	TimeBonus    int // points per remaining time unit on a correct answer
	ComboStep    float64
	ComboMax     float64
	MCQPenalty   float64
}

// DefaultConfig returns the standard drill rules.
func DefaultConfig() Config {
	return Config{
		TimeLimit:    30,
		TickInterval: time.Second,
		AdvanceDelay: 2500 * time.Millisecond,
		BasePoints:   100,
		TimeBonus:    2,
		ComboStep:    0.2,
		ComboMax:     2.0,
		MCQPenalty:   25,
	}
}

// withDefaults returns DefaultConfig for a zero Config. Otherwise it fills
// unset durations and multipliers; a zero TimeBonus or MCQPenalty is kept as
// an explicit choice.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c == (Config{}) {
		return d
	}
	if c.TimeLimit <= 0 {
		c.TimeLimit = d.TimeLimit
	}
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.AdvanceDelay <= 0 {
		c.AdvanceDelay = d.AdvanceDelay
	}
	if c.BasePoints <= 0 {
		c.BasePoints = d.BasePoints
	}
	if c.TimeBonus < 0 {
		c.TimeBonus = d.TimeBonus
	}
	if c.ComboStep <= 0 {
		c.ComboStep = d.ComboStep
	}
	if c.ComboMax < 1 {
		c.ComboMax = d.ComboMax
	}
	if c.MCQPenalty < 0 {
		c.MCQPenalty = d.MCQPenalty
	}
	return c
}
