package response

const (
	// MessageSuccess is the default success message
	MessageSuccess = "Success"

	// DefaultErrorMessage is returned for internal errors
	DefaultErrorMessage = "Internal server error"

	// InternalServerErrorCode is the error code for internal errors
	InternalServerErrorCode = 500

	// DateTimeFormat is the wire format for DateTime values
	DateTimeFormat = "2006-01-02 15:04:05"
)
