package handlers

import (
	"net/http"

	"ideas-backend/internal/domain/idea"
	"ideas-backend/internal/service/ideas"
	"ideas-backend/pkg/api"

	"go.uber.org/zap"
)

const ideaResource = "Idea"

// IdeaHandler serves /api/ideas.
type IdeaHandler struct {
	ideas  ideas.Service
	logger *zap.Logger
}

func NewIdeaHandler(ideaService ideas.Service, logger *zap.Logger) *IdeaHandler {
	return &IdeaHandler{ideas: ideaService, logger: logger}
}

// List handles GET /api/ideas.
// @Summary List ideas
// @Tags Ideas
// @Produce json
// @Security Bearer
// @Param search query string false "Case-insensitive substring"
// @Param tags query string false "Comma separated tags"
// @Success 200 {array} idea.Idea
// @Failure 401 {object} api.ErrorResponse
// @Router /ideas [get]
func (h *IdeaHandler) List(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	filter := listFilter(r)

	var (
		result []idea.Idea
		err    error
	)
	if filter.Search == "" && len(filter.Tags) > 0 {
		result, err = h.ideas.SearchByTags(r.Context(), user.ID, filter.Tags)
	} else {
		result, err = h.ideas.FindAll(r.Context(), user.ID, filter)
	}
	if err != nil {
		respondError(w, r, h.logger, err, "fetch ideas", ideaResource)
		return
	}
	api.Success(w, http.StatusOK, result)
}

// Create handles POST /api/ideas.
// @Summary Create an idea
// @Tags Ideas
// @Accept json
// @Produce json
// @Security Bearer
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param request body idea.CreateIdeaInput true "Idea"
// @Success 201 {object} idea.Idea
// @Failure 400 {object} api.ErrorResponse
// @Router /ideas [post]
func (h *IdeaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in idea.CreateIdeaInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	created, err := h.ideas.Create(r.Context(), currentUser(r).ID, in)
	if err != nil {
		respondError(w, r, h.logger, err, "create idea", ideaResource)
		return
	}
	api.Success(w, http.StatusCreated, created)
}

// Get handles GET /api/ideas/{id}.
// @Summary Get an idea
// @Tags Ideas
// @Produce json
// @Security Bearer
// @Param id path string true "Idea ID"
// @Success 200 {object} idea.Idea
// @Failure 404 {object} api.ErrorResponse
// @Router /ideas/{id} [get]
func (h *IdeaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.ideas.FindByID(r.Context(), currentUser(r).ID, id)
	if err != nil {
		respondError(w, r, h.logger, err, "fetch idea", ideaResource)
		return
	}
	if found == nil {
		api.Error(w, http.StatusNotFound, ideaResource+" not found")
		return
	}
	api.Success(w, http.StatusOK, found)
}

// Update handles PUT /api/ideas/{id}.
// @Summary Update an idea
// @Tags Ideas
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Idea ID"
// @Param request body idea.UpdateIdeaInput true "Fields to change"
// @Success 200 {object} idea.Idea
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /ideas/{id} [put]
func (h *IdeaHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in idea.UpdateIdeaInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	updated, err := h.ideas.Update(r.Context(), currentUser(r).ID, id, in)
	if err != nil {
		respondError(w, r, h.logger, err, "update idea", ideaResource)
		return
	}
	api.Success(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/ideas/{id}.
// @Summary Delete an idea
// @Tags Ideas
// @Produce json
// @Security Bearer
// @Param id path string true "Idea ID"
// @Success 200 {object} api.MessageResponse
// @Router /ideas/{id} [delete]
func (h *IdeaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.ideas.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		respondError(w, r, h.logger, err, "delete idea", ideaResource)
		return
	}
	api.Success(w, http.StatusOK, api.MessageResponse{Message: "Idea deleted successfully"})
}

// AddFeedback handles POST /api/ideas/{id}/feedback.
// @Summary Rate an idea and leave feedback
// @Tags Ideas
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Idea ID"
// @Param request body idea.FeedbackInput true "Rating 1-5 and feedback"
// @Success 200 {object} idea.Idea
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /ideas/{id}/feedback [post]
func (h *IdeaHandler) AddFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in idea.FeedbackInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	updated, err := h.ideas.AddFeedback(r.Context(), currentUser(r).ID, id, in)
	if err != nil {
		respondError(w, r, h.logger, err, "add feedback", ideaResource)
		return
	}
	api.Success(w, http.StatusOK, updated)
}
