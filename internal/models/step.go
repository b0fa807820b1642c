package models

import "fmt"

// Step is a booking wizard state. The zero value is the first step.
type Step int

const (
	StepDateSelection Step = iota
	StepServiceSelection
	StepCustomization
	StepContactInfo
	StepCompleted
)

var stepNames = [...]string{
	StepDateSelection:    "date_selection",
	StepServiceSelection: "service_selection",
	StepCustomization:    "customization",
	StepContactInfo:      "contact_info",
	StepCompleted:        "completed",
}

func (s Step) String() string {
	if s < StepDateSelection || s > StepCompleted {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Number is the 1-based position shown in the progress bar.
func (s Step) Number() int {
	return int(s) + 1
}

// Previous returns the preceding step. The first step has none.
func (s Step) Previous() (Step, bool) {
	if s <= StepDateSelection || s >= StepCompleted {
		return s, false
	}
	return s - 1, true
}

func (s Step) Terminal() bool {
	return s == StepCompleted
}
