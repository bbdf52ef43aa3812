package handlers

import (
	"net/http"

	"ideas-backend/internal/domain/idea"
	"ideas-backend/internal/service/ideas"
	"ideas-backend/internal/service/topics"
	"ideas-backend/pkg/api"

	"go.uber.org/zap"
)

const topicResource = "Idea topic"

// TopicHandler serves /api/idea-topics.
type TopicHandler struct {
	topics topics.Service
	ideas  ideas.Service
	logger *zap.Logger
}

// NewTopicHandler creates a topic handler. The idea service backs the
// nested /{id}/ideas listing.
func NewTopicHandler(topicService topics.Service, ideaService ideas.Service, logger *zap.Logger) *TopicHandler {
	return &TopicHandler{topics: topicService, ideas: ideaService, logger: logger}
}

// List handles GET /api/idea-topics.
// @Summary List idea topics
// @Description Lists the caller's topics, newest first. search matches name or description; tags must all be present.
// @Tags Idea Topics
// @Produce json
// @Security Bearer
// @Param search query string false "Case-insensitive substring"
// @Param tags query string false "Comma separated tags"
// @Success 200 {array} idea.IdeaTopic
// @Failure 401 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /idea-topics [get]
func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	filter := listFilter(r)

	var (
		result []idea.IdeaTopic
		err    error
	)
	if filter.Search == "" && len(filter.Tags) > 0 {
		result, err = h.topics.SearchByTags(r.Context(), user.ID, filter.Tags)
	} else {
		result, err = h.topics.FindAll(r.Context(), user.ID, filter)
	}
	if err != nil {
		respondError(w, r, h.logger, err, "fetch idea topics", topicResource)
		return
	}
	api.Success(w, http.StatusOK, result)
}

// Create handles POST /api/idea-topics.
// @Summary Create an idea topic
// @Tags Idea Topics
// @Accept json
// @Produce json
// @Security Bearer
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param request body idea.CreateTopicInput true "Topic"
// @Success 201 {object} idea.IdeaTopic
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /idea-topics [post]
func (h *TopicHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in idea.CreateTopicInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	topic, err := h.topics.Create(r.Context(), currentUser(r).ID, in)
	if err != nil {
		respondError(w, r, h.logger, err, "create idea topic", topicResource)
		return
	}
	api.Success(w, http.StatusCreated, topic)
}

// Get handles GET /api/idea-topics/{id}.
// @Summary Get an idea topic
// @Tags Idea Topics
// @Produce json
// @Security Bearer
// @Param id path string true "Topic ID"
// @Success 200 {object} idea.IdeaTopic
// @Failure 404 {object} api.ErrorResponse
// @Router /idea-topics/{id} [get]
func (h *TopicHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	topic, err := h.topics.FindByID(r.Context(), currentUser(r).ID, id)
	if err != nil {
		respondError(w, r, h.logger, err, "fetch idea topic", topicResource)
		return
	}
	if topic == nil {
		api.Error(w, http.StatusNotFound, topicResource+" not found")
		return
	}
	api.Success(w, http.StatusOK, topic)
}

// Update handles PUT /api/idea-topics/{id}.
// @Summary Update an idea topic
// @Description Only the supplied fields change.
// @Tags Idea Topics
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Topic ID"
// @Param request body idea.UpdateTopicInput true "Fields to change"
// @Success 200 {object} idea.IdeaTopic
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /idea-topics/{id} [put]
func (h *TopicHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in idea.UpdateTopicInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	topic, err := h.topics.Update(r.Context(), currentUser(r).ID, id, in)
	if err != nil {
		respondError(w, r, h.logger, err, "update idea topic", topicResource)
		return
	}
	api.Success(w, http.StatusOK, topic)
}

// Delete handles DELETE /api/idea-topics/{id}.
// @Summary Delete an idea topic
// @Description Deleting an unknown id succeeds. Ideas of the topic are not removed.
// @Tags Idea Topics
// @Produce json
// @Security Bearer
// @Param id path string true "Topic ID"
// @Success 200 {object} api.MessageResponse
// @Router /idea-topics/{id} [delete]
func (h *TopicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.topics.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		respondError(w, r, h.logger, err, "delete idea topic", topicResource)
		return
	}
	api.Success(w, http.StatusOK, api.MessageResponse{Message: "Idea topic deleted successfully"})
}

// ListIdeas handles GET /api/idea-topics/{id}/ideas.
// @Summary List the ideas of a topic
// @Tags Idea Topics
// @Produce json
// @Security Bearer
// @Param id path string true "Topic ID"
// @Param search query string false "Case-insensitive substring"
// @Success 200 {array} idea.Idea
// @Router /idea-topics/{id}/ideas [get]
func (h *TopicHandler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	result, err := h.ideas.FindByTopicID(r.Context(), currentUser(r).ID, id, r.URL.Query().Get("search"))
	if err != nil {
		respondError(w, r, h.logger, err, "fetch ideas", ideaResource)
		return
	}
	api.Success(w, http.StatusOK, result)
}
