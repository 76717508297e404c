package model

import (
	"errors"
	"fmt"
)

// ErrUnknownGrowthClass is returned when a label does not name a growth class.
var ErrUnknownGrowthClass = errors.New("unknown rating growth class")

// GrowthClass is the severity class of a snapshot's rating growth.
// The zero value is not a valid class; use ClassifyGrowth or ParseGrowthClass.
type GrowthClass int

// Growth classes, ordered from strongest gain to steepest decline.
const (
	GrowthExplosive GrowthClass = iota + 1
	GrowthVeryHigh
	GrowthHigh
	GrowthModerate
	GrowthNeutral
	GrowthSlightDecline
	GrowthDecline
	GrowthSteepDecline
)

// growthThreshold pairs a class with the predicate that admits it.
type growthThreshold struct {
	class GrowthClass
	match func(growth int) bool
}

// growthThresholds are evaluated in order; the first match wins.
var growthThresholds = []growthThreshold{
	{GrowthExplosive, func(g int) bool { return g > 400 }},
	{GrowthVeryHigh, func(g int) bool { return g > 300 }},
	{GrowthHigh, func(g int) bool { return g > 150 }},
	{GrowthModerate, func(g int) bool { return g > 75 }},
	{GrowthNeutral, func(g int) bool { return g >= 0 }},
	{GrowthSlightDecline, func(g int) bool { return g >= -75 }},
	{GrowthDecline, func(g int) bool { return g >= -150 }},
}

var growthLabels = map[GrowthClass]string{
	GrowthExplosive:     ">400",
	GrowthVeryHigh:      ">300",
	GrowthHigh:          ">150",
	GrowthModerate:      ">75",
	GrowthNeutral:       "0",
	GrowthSlightDecline: ">-75",
	GrowthDecline:       ">-150",
	GrowthSteepDecline:  ">-300",
}

var growthNames = map[GrowthClass]string{
	GrowthExplosive:     "EXPLOSIVE",
	GrowthVeryHigh:      "VERY_HIGH",
	GrowthHigh:          "HIGH",
	GrowthModerate:      "MODERATE",
	GrowthNeutral:       "NEUTRAL",
	GrowthSlightDecline: "SLIGHT_DECLINE",
	GrowthDecline:       "DECLINE",
	GrowthSteepDecline:  "STEEP_DECLINE",
}

// ClassifyGrowth maps an aggregate rating growth to its class.
func ClassifyGrowth(growth int) GrowthClass {
	for _, t := range growthThresholds {
		if t.match(growth) {
			return t.class
		}
	}
	return GrowthSteepDecline
}

// ParseGrowthClass resolves a persisted label such as ">150".
func ParseGrowthClass(label string) (GrowthClass, error) {
	for class, l := range growthLabels {
		if l == label {
			return class, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGrowthClass, label)
}

// Label returns the persisted threshold label of the class.
func (c GrowthClass) Label() string {
	return growthLabels[c]
}

// String returns the symbolic name of the class.
func (c GrowthClass) String() string {
	if name, ok := growthNames[c]; ok {
		return name
	}
	return fmt.Sprintf("GrowthClass(%d)", int(c))
}

// Valid reports whether c is one of the eight defined classes.
func (c GrowthClass) Valid() bool {
	_, ok := growthLabels[c]
	return ok
}

// MarshalText encodes the class as its threshold label.
func (c GrowthClass) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGrowthClass, int(c))
	}
	return []byte(c.Label()), nil
}

// UnmarshalText decodes a threshold label.
func (c *GrowthClass) UnmarshalText(text []byte) error {
	class, err := ParseGrowthClass(string(text))
	if err != nil {
		return err
	}
	*c = class
	return nil
}
