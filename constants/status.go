package constants

// JobStatus is the canonical status for rows in processing_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"  // accepted, not started yet
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusOK      JobStatus = "OK"      // extraction completed
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure
)
