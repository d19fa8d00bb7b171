package errors

// userMessages holds the user-facing text per code or readiness reason.
var userMessages = map[string]string{
	string(CodeConfiguration):      "The session is misconfigured and cannot start.",
	string(CodeUnauthorizedAction): "You are not allowed to do that right now.",
	string(CodeRemoteTimeout):      "The server did not confirm in time. Try again.",
	string(CodeRemoteRejected):     "The server rejected the action.",
	string(CodeTransport):          "Connection to the server failed.",

	"unauthorized":           "Only the director can do that.",
	"not_active_participant": "It is not your turn.",
	"phase_mismatch":         "That action is not available in the current phase.",
	"no_elements":            "Deploy at least one element before marking ready.",
	"invalid_element":        "Every element needs a type, designation, magnitude and owner.",
	"missing_dependency":     "Every element needs a higher-echelon dependency in networked sessions.",
	"participants_not_ready": "Not every participant has completed deployment.",
	"director_excluded":      "The director does not deploy forces.",
}

// UserMessage returns the user-facing message for a code or reason.
func UserMessage(key string) string {
	if msg, ok := userMessages[key]; ok {
		return msg
	}
	return "Something went wrong."
}
