package handler

import (
	"context"
	"net/http"

	"github.com/iho/qatledger/internal/adapter/http/dto"
	"github.com/iho/qatledger/internal/usecase"
)

// AssistantService defines the behavior needed by AssistantHandler.
type AssistantService interface {
	Propose(ctx context.Context, text string) (*usecase.Command, error)
	Execute(ctx context.Context, cmd usecase.Command) (*usecase.CommandResult, error)
}

// AssistantHandler turns free text into proposed commands and executes
// commands the user accepted.
type AssistantHandler struct {
	assistant AssistantService
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(assistant AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// Propose returns a command for review. Nothing is written.
func (h *AssistantHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req dto.ProposalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	cmd, err := h.assistant.Propose(r.Context(), req.Text)
	if err != nil {
		status := mapDomainError(err)
		if status == http.StatusInternalServerError {
			// Upstream model failures are not ours.
			status = http.StatusBadGateway
		}
		writeError(w, status, "failed to propose command", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, cmd)
}

// Execute applies a command.
func (h *AssistantHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var cmd usecase.Command
	if err := decodeJSON(w, r, &cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.assistant.Execute(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, "failed to execute command", err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
