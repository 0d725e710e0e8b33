package constants

// RunStatus is the lifecycle status of an async comparison run.
type RunStatus string

const (
	RunStatusQueued  RunStatus = "QUEUED"
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusDone    RunStatus = "DONE"
	RunStatusFailed  RunStatus = "FAILED"
)
