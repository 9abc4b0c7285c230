package validation

const (
	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// String lengths
	MaxNoteLength = 255
	MaxNameLength = 50

	// Transaction PIN
	MinPinLength = 4
	MaxPinLength = 6
)
