package game

const (
	// DefaultTurnSeconds is the per-turn budget used when the config leaves it unset
	DefaultTurnSeconds = 300

	// MinTurnSeconds is the shortest accepted per-turn budget
	MinTurnSeconds = 30

	// MaxTurnSeconds is the longest accepted per-turn budget
	MaxTurnSeconds = 3600

	// SessionCodeLength is the length of generated session codes
	SessionCodeLength = 6

	// SessionCodeChars are the characters used for session codes (excluding ambiguous chars)
	SessionCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)
