package risk

// Severity represents the ordinal collision risk level of a vehicle
type Severity int

const (
	// No collision risk detected
	None Severity = 0
	// Low collision risk
	Low Severity = 1
	// Medium collision risk
	Medium Severity = 2
	// High collision risk
	High Severity = 3
	// Critical collision risk
	Critical Severity = 4
)

// String returns the name of the severity level
func (s Severity) String() string {
	switch s {
	case None:
		return "none"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Critical:
		return "critical"
	}

	return "unknown"
}
