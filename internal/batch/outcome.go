package batch

// Status is the terminal state of one record.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ReasonMissingData is the reason recorded for records lacking a name,
// identifier or email.
const ReasonMissingData = "Missing required data"

// Outcome is the result of processing one roster record. Fields hold the
// trimmed record values.
type Outcome struct {
	Name       string
	Identifier string
	Email      string
	Status     Status
	Reason     string
	ArchiveKey string // set when the artifact was archived
}

// Succeeded reports whether the certificate was rendered and delivered.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

func failed(o Outcome, reason string) Outcome {
	o.Status = StatusFailed
	o.Reason = reason
	return o
}
