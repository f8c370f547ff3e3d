package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"noteboard-server/internal/domain"
	"noteboard-server/internal/service"
	"noteboard-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

type AssistHandler struct {
	service  *service.AssistService
	validate *validator.Validate
}

func NewAssistHandler(service *service.AssistService) *AssistHandler {
	return &AssistHandler{
		service:  service,
		validate: validator.New(),
	}
}

// Generate handles POST /api/notes/generate. Upstream failures come back as
// one generic error; the model's error detail stays in the server log.
func (h *AssistHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	content, err := h.service.DraftNote(r.Context(), req.Prompt)
	if err != nil {
		log.Printf("content generation error: %v", err)
		response.Error(w, http.StatusBadGateway, "Content generation is unavailable")
		return
	}

	response.Success(w, domain.GenerateNoteResponse{Content: content})
}
