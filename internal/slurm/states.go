package slurm

import "strings"

var stateAliases = map[string]string{
	"RUNNING":       "R",
	"COMPLETING":    "CG",
	"CONFIGURING":   "CF",
	"PENDING":       "PD",
	"PREEMPTED":     "PR",
	"REQUEUED":      "RQ",
	"REQUEUE_HOLD":  "RH",
	"REQUEUE_FED":   "RF",
	"RESIZING":      "RS",
	"SUSPENDED":     "S",
	"STOPPED":       "ST",
	"COMPLETED":     "CD",
	"CANCELLED":     "CA",
	"FAILED":        "F",
	"TIMEOUT":       "TO",
	"NODE_FAIL":     "NF",
	"OUT_OF_MEMORY": "OOM",
}

// StateCode normalizes a Slurm job state to its short code (R, PD, etc.).
// Inputs like "CANCELLED by 4840" map on their first word; already-short
// codes pass through unchanged.
func StateCode(state string) string {
	text := strings.ToUpper(strings.TrimSpace(state))
	if text == "" {
		return ""
	}
	text = strings.TrimRight(text, "*+")

	if alias, ok := stateAliases[text]; ok {
		return alias
	}
	parts := strings.Fields(text)
	if len(parts) > 1 {
		if alias, ok := stateAliases[parts[0]]; ok {
			return alias
		}
	}
	return text
}

// IsRunningState reports whether a state string describes a running job.
func IsRunningState(state string) bool {
	s := StateCode(state)
	return s == "R" || s == "CG"
}

// IsPendingState reports whether a state string describes a job waiting to run.
func IsPendingState(state string) bool {
	switch StateCode(state) {
	case "PD", "CF", "PR", "RQ", "RS", "S", "ST", "RH", "RF":
		return true
	}
	return false
}
