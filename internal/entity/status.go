package entity

import "time"

// EngineState is the Status Reporter's published lifecycle state.
type EngineState string

const (
	StateStandby  EngineState = "standby"
	StateScanning EngineState = "scanning"
	StateError    EngineState = "error"
)

// EngineStatus is a point-in-time snapshot published by the Status Reporter.
type EngineStatus struct {
	State     EngineState
	Message   string
	Progress  *float64 // nil means indeterminate/unset
	Meta      map[string]any
	UpdatedAt time.Time
}

// ActivityLevel is the severity of one ActivityEntry.
type ActivityLevel string

const (
	ActivityDebug ActivityLevel = "DEBUG"
	ActivityInfo  ActivityLevel = "INFO"
	ActivityWarn  ActivityLevel = "WARN"
	ActivityError ActivityLevel = "ERROR"
)

// ActivityEntry is one append-only record in the Activity Sink.
type ActivityEntry struct {
	Timestamp time.Time
	Level     ActivityLevel
	Message   string
	Payload   map[string]any
	JobID     string
}
