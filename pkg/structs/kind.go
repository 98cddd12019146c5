package structs

const (
	// KindGovernedFunction is the job kind that runs a user authored function
	// through the execution governor.
	KindGovernedFunction = "governed-function"
)
