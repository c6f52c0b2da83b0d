package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// canonicalToken NFC-normalizes and case-folds user input and drops the
// separators people type in exercise names ("Push-Up", "sit up").
// A Caser is stateful, so each call builds its own.
func canonicalToken(s string) string {
	s = cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// ParseExerciseType accepts any casing or separator style of a supported
// exercise name, including the plural forms.
func ParseExerciseType(s string) (ExerciseType, error) {
	tok := strings.TrimSuffix(canonicalToken(s), "s")
	t := ExerciseType(tok)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown exercise type %q (use squat, situp or pushup)", s)
	}
	return t, nil
}

// ParseSessionEventType accepts start, pause, resume or end in any casing.
func ParseSessionEventType(s string) (SessionEventType, error) {
	t := SessionEventType(canonicalToken(s))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown session event %q (use start, pause, resume or end)", s)
	}
	return t, nil
}

// ParseMealChoice accepts ate or skipped in any casing.
func ParseMealChoice(s string) (MealChoice, error) {
	c := MealChoice(canonicalToken(s))
	if !c.IsValid() {
		return "", fmt.Errorf("unknown meal choice %q (use ate or skipped)", s)
	}
	return c, nil
}

// ParseStatsPeriod accepts week or month in any casing.
func ParseStatsPeriod(s string) (StatsPeriod, error) {
	p := StatsPeriod(canonicalToken(s))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown stats period %q (use week or month)", s)
	}
	return p, nil
}
