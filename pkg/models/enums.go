package models

// String methods for the closed enumerations.

// LifecycleStage
func (s LifecycleStage) String() string { return string(s) }

// AlertLevel
func (a AlertLevel) String() string { return string(a) }
