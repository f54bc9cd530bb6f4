package store

// Storage prefices
const (
	StakePositionPrefix = "sp-"
)
