package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/supportdesk/ticketing-service/internal/config"
	apperrors "github.com/supportdesk/ticketing-service/pkg/util"
)

// Job states reported by the polling contract.
const (
	JobStatePending = "pending"
	JobStateSuccess = "success"
	JobStateFailure = "failure"
)

// JobStatus is the pollable view of a submitted job. Result is set on
// success, Error on failure; State carries the raw queue state for jobs
// that are neither settled nor waiting.
type JobStatus struct {
	ID     string          `json:"id"`
	State  string          `json:"state"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Client submits named jobs to the Redis-backed queue and polls their
// status. Submission is non-blocking; results are retrieved only via
// GetStatus.
type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
	maxRetry  int
	retention time.Duration
}

// NewClient connects the enqueueing side of the queue.
func NewClient(redisCfg config.RedisConfig, cfg config.QueueConfig) *Client {
	opt := RedisOpt(redisCfg)
	return &Client{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		queue:     cfg.Name,
		maxRetry:  cfg.MaxRetry,
		retention: cfg.ResultRetention(),
	}
}

// Close releases queue connections.
func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueSendEmail submits a durable email job and returns its handle.
func (c *Client) EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (string, error) {
	return c.enqueue(ctx, TaskTypeSendEmail, payload)
}

// EnqueueReadInbox submits an inbox-read job and returns its handle.
func (c *Client) EnqueueReadInbox(ctx context.Context, payload ReadInboxPayload) (string, error) {
	return c.enqueue(ctx, TaskTypeReadInbox, payload)
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", taskType, err)
	}
	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(taskType, data),
		asynq.Queue(c.queue),
		asynq.MaxRetry(c.maxRetry),
		asynq.Retention(c.retention),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return info.ID, nil
}

// GetStatus polls a job handle. It is idempotent and side-effect-free.
func (c *Client) GetStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	info, err := c.inspector.GetTaskInfo(c.queue, jobID)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return nil, apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
		}
		return nil, apperrors.MapError(err)
	}
	return statusFromTaskInfo(info), nil
}

func statusFromTaskInfo(info *asynq.TaskInfo) *JobStatus {
	status := &JobStatus{ID: info.ID}
	switch info.State {
	case asynq.TaskStatePending, asynq.TaskStateScheduled, asynq.TaskStateRetry:
		status.State = JobStatePending
	case asynq.TaskStateCompleted:
		status.State = JobStateSuccess
		if len(info.Result) > 0 {
			status.Result = json.RawMessage(info.Result)
		}
	case asynq.TaskStateArchived:
		status.State = JobStateFailure
		status.Error = info.LastErr
	default:
		status.State = info.State.String()
	}
	return status
}
