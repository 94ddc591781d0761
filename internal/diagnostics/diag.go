package diagnostics

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes pushed to /diag clients.
const (
	CodePrompt         = "SHOW.PROMPT"
	CodeControl        = "CONTROL.ACCEPTED"
	CodeControlUnknown = "CONTROL.UNKNOWN"
	CodeControlDropped = "CONTROL.DROPPED"
	CodeDriverWrite    = "DRIVER.WRITE"
	CodeTestRunning    = "TEST.RUNNING"
	CodeTestDone       = "TEST.DONE"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// DriverError describes a failed frame write.
func DriverError(frame uint64, err error) Diagnostic {
	return Diagnostic{
		Severity:       Err,
		Code:           CodeDriverWrite,
		Summary:        "LED frame write failed",
		Detail:         err.Error(),
		LikelyCauses:   []string{"SPI port closed or busy", "strip power lost"},
		SuggestedFixes: []string{"check the strip supply", "restart with -driver sim to isolate the hardware"},
		Evidence:       map[string]any{"frame_id": frame},
	}
}
