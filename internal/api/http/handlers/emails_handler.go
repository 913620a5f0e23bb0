package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supportdesk/ticketing-service/internal/api/dto"
	"github.com/supportdesk/ticketing-service/internal/queue"
	apperrors "github.com/supportdesk/ticketing-service/pkg/util"
)

// EmailsHandler exposes the durable job queue endpoints.
type EmailsHandler struct {
	queue *queue.Client
}

// NewEmailsHandler constructs handler.
func NewEmailsHandler(queueClient *queue.Client) *EmailsHandler {
	return &EmailsHandler{queue: queueClient}
}

// SendAsync handles POST /emails/send_async: submit a durable email job.
func (h *EmailsHandler) SendAsync(c *fiber.Ctx) error {
	var req dto.SendEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Recipient == "" {
		return apperrors.NewValidationError("recipient required", nil)
	}

	jobID, err := h.queue.EnqueueSendEmail(c.UserContext(), queue.SendEmailPayload{
		Subject:   req.Subject,
		Recipient: req.Recipient,
		Body:      req.Body,
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(dto.JobSubmittedResponse{JobID: jobID, Status: "queued"})
}

// StartInboxRead handles POST /emails/async: submit an inbox-read job.
func (h *EmailsHandler) StartInboxRead(c *fiber.Ctx) error {
	req := dto.ReadInboxRequest{Limit: 5}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	jobID, err := h.queue.EnqueueReadInbox(c.UserContext(), queue.ReadInboxPayload{Limit: req.Limit})
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(dto.JobSubmittedResponse{JobID: jobID, Status: "queued"})
}

// JobStatus handles GET /emails/async/:job_id: poll a job handle.
func (h *EmailsHandler) JobStatus(c *fiber.Ctx) error {
	status, err := h.queue.GetStatus(c.UserContext(), c.Params("job_id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.JobStatusResponse{
		Status: status.State,
		Result: status.Result,
		Error:  status.Error,
	})
}
