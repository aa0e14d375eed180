package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeDeriveBatch represents a batch label derivation job.
	JobTypeDeriveBatch JobType = "derive_batch"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// DeriveBatchJob represents a job to run the derivation engine over one
// batch of transaction and snapshot files.
type DeriveBatchJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// TransactionsURI locates the transactions CSV, local path or gs:// URI.
	TransactionsURI string `json:"transactions_uri"`

	// SnapshotsURI locates the account-snapshot CSV.
	SnapshotsURI string `json:"snapshots_uri"`

	// ConfigPath optionally locates a YAML settings file.
	ConfigPath string `json:"config_path,omitempty"`

	// DerivationRunID is the ID of the run row in BigQuery, if tracked.
	DerivationRunID string `json:"derivation_run_id,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *DeriveBatchJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *DeriveBatchJob) GetType() JobType {
	return JobTypeDeriveBatch
}

// GetStatus implements the Job interface.
func (j *DeriveBatchJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue. The
// abstraction allows different queue implementations (in-memory, Cloud
// Tasks, Pub/Sub).
type Publisher interface {
	// PublishDeriveBatch publishes a batch derivation job.
	PublishDeriveBatch(ctx context.Context, job *DeriveBatchJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue. The handler function is
	// called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job. It should return an error
// if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *DeriveBatchJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*DeriveBatchJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*DeriveBatchJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
