package dto

import "encoding/json"

// SendEmailRequest payload for the durable email job endpoint.
type SendEmailRequest struct {
	Subject   string `json:"subject"`
	Recipient string `json:"recipient"`
	Body      string `json:"body"`
}

// ReadInboxRequest payload for the inbox-read job endpoint.
type ReadInboxRequest struct {
	Limit int `json:"limit"`
}

// JobSubmittedResponse returns the handle of a queued job.
type JobSubmittedResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobStatusResponse is the polled view of a job.
type JobStatusResponse struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}
