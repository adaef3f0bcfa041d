package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPermissionsWarmup precomputes effective permission sets.
	TaskPermissionsWarmup = "authz:permissions_warmup"
)

// PermissionsWarmupPayload bounds a warmup run.
type PermissionsWarmupPayload struct {
	// Limit caps how many users a single run touches. Zero means the
	// handler default.
	Limit int `json:"limit"`
}

// NewPermissionsWarmupTask constructs an Asynq task.
func NewPermissionsWarmupTask(payload PermissionsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPermissionsWarmup, data), nil
}
