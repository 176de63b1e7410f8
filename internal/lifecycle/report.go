package lifecycle

// Status keywords understood by the agent.
const (
	StatusTransitioning = "transitioning"
	StatusSuccess       = "success"
	StatusError         = "error"
)

// Exit codes returned to the agent.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Report is the outcome of one operation as persisted for the agent.
type Report struct {
	ExitCode  int
	Operation string
	Status    string
	SubStatus string
	Message   string
}

// SuccessReport builds the report for a verb that completed.
func SuccessReport(verb Verb, message string) Report {
	return Report{
		ExitCode:  ExitSuccess,
		Operation: verb.Operation(),
		Status:    StatusSuccess,
		SubStatus: "0",
		Message:   message,
	}
}

// FailureReport builds the report for a verb that failed.
func FailureReport(verb Verb, message string) Report {
	return Report{
		ExitCode:  ExitFailure,
		Operation: verb.Operation(),
		Status:    StatusError,
		SubStatus: "1",
		Message:   message,
	}
}
