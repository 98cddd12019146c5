package common

const (
	// API_JOBS is used to list or enqueue jobs
	API_JOBS = "/api/v1/jobs"

	// API_JOB is used to get a single job by ID
	API_JOB = "/api/v1/jobs/{id}"

	// API_EVENTS is used to dispatch a domain event
	API_EVENTS = "/api/v1/events"

	// API_HEALTH reports the server is up
	API_HEALTH = "/healthz"
)
