package types

import (
	"os"
	"strconv"
)

const (
	DEFAULT_BASELINE_SCORE           = 100
	DEFAULT_UPHELD_AUTHOR_WEIGHT     = 1.0
	DEFAULT_DISMISSED_FLAGGER_WEIGHT = 0.5
)

// ModerationPolicy holds the tunable knobs of the moderation economy. The
// delta formula is policy, not a constant: every weight can be overridden
// through the environment.
type ModerationPolicy struct {
	BaselineScore          int64   // starting reputation for a fresh identity
	UpheldAuthorWeight     float64 // author penalty per staked unit when a flag is upheld
	DismissedFlaggerWeight float64 // flagger penalty per staked unit when a flag is dismissed
}

func GetModerationPolicy() ModerationPolicy {
	policy := ModerationPolicy{
		BaselineScore:          DEFAULT_BASELINE_SCORE,
		UpheldAuthorWeight:     DEFAULT_UPHELD_AUTHOR_WEIGHT,
		DismissedFlaggerWeight: DEFAULT_DISMISSED_FLAGGER_WEIGHT,
	}

	if v := os.Getenv("MODERATION_BASELINE_SCORE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed >= 0 {
			policy.BaselineScore = parsed
		}
	}
	if v := os.Getenv("MODERATION_UPHELD_AUTHOR_WEIGHT"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			policy.UpheldAuthorWeight = parsed
		}
	}
	if v := os.Getenv("MODERATION_DISMISSED_FLAGGER_WEIGHT"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			policy.DismissedFlaggerWeight = parsed
		}
	}

	return policy
}
