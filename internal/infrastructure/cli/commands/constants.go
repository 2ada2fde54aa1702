package commands

// Error messages
const (
	ErrDoctorServiceUnavailable = "doctor service unavailable"
)
