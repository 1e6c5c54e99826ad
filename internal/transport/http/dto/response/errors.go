package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrVisitorCredentialMissing = ErrorResponse{
		Status:  "error",
		Error:   "visitor_credential_missing",
		Details: "Open the link you were given to get access",
	}

	ErrVisitorCredentialInvalid = ErrorResponse{
		Status:  "error",
		Error:   "visitor_credential_invalid",
		Details: "The link has expired or is not valid",
	}
)
