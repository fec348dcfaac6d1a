// Package awx provides an HTTP client for the AWX job-orchestration API.
// Types mirror the subset of the AWX v2 wire format the monitor reads.
package awx

import "time"

// JobStatus is the lifecycle state AWX reports for a job.
type JobStatus string

const (
	StatusNew        JobStatus = "new"
	StatusPending    JobStatus = "pending"
	StatusWaiting    JobStatus = "waiting"
	StatusRunning    JobStatus = "running"
	StatusSuccessful JobStatus = "successful"
	StatusFailed     JobStatus = "failed"
	StatusError      JobStatus = "error"
	StatusCanceled   JobStatus = "canceled"
)

// Finished reports whether the status is terminal.
func (s JobStatus) Finished() bool {
	switch s {
	case StatusSuccessful, StatusFailed, StatusError, StatusCanceled:
		return true
	}
	return false
}

// Job is a single row of the jobs listing. Started and Finished are nil until
// AWX has recorded them.
type Job struct {
	ID             int        `json:"id"`
	Status         JobStatus  `json:"status"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	LaunchType     string     `json:"launch_type,omitempty"`
	Started        *time.Time `json:"started"`
	Finished       *time.Time `json:"finished"`
	Elapsed        float64    `json:"elapsed,omitempty"`
	JobExplanation string     `json:"job_explanation,omitempty"`
}

// JobList is the envelope returned by /api/v2/jobs/.
type JobList struct {
	Count   int    `json:"count"`
	Results []Job  `json:"results"`
	Next    string `json:"next,omitempty"`
}

// Ping is the body of /api/v2/ping/. Only the version is surfaced.
type Ping struct {
	Version string `json:"version"`
	Active  string `json:"active_node,omitempty"`
}
