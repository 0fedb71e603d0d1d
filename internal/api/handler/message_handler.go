package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/obralink/marketplace/internal/api/metrics"
	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

const streamHeartbeat = 25 * time.Second

// MessageHandler serves project conversations, including the live SSE feed.
type MessageHandler struct {
	service ports.MessageService
	feed    ports.FeedSubscriber
}

func NewMessageHandler(service ports.MessageService, feed ports.FeedSubscriber) *MessageHandler {
	return &MessageHandler{service: service, feed: feed}
}

// List handles GET /v1/projects/:id/messages.
//
// @Summary      Conversation history, oldest first
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  listResponse[domain.Message]
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/projects/{id}/messages [get]
func (h *MessageHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	messages, err := h.service.Load(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(messages))
}

// Send handles POST /v1/projects/:id/messages.
//
// @Summary      Send a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Project ID"
// @Param        body  body      sendMessageRequest  true  "Message"
// @Success      201   {object}  domain.Message
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /v1/projects/{id}/messages [post]
func (h *MessageHandler) Send(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	msg, err := h.service.Send(c.Request().Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	metrics.MessagesSentTotal.Inc()
	return c.JSON(http.StatusCreated, msg)
}

// Stream handles GET /v1/projects/:id/messages/stream as Server-Sent Events.
// Each new message is written as a "message" event carrying the JSON row.
//
// @Summary      Live message feed
// @Tags         messages
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id            path   string  true   "Project ID"
// @Param        access_token  query  string  false  "JWT for clients that cannot set headers"
// @Success      200
// @Failure      403  {object}  map[string]string
// @Router       /v1/projects/{id}/messages/stream [get]
func (h *MessageHandler) Stream(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	projectID := c.Param("id")
	ctx := c.Request().Context()
	if err := h.service.Authorize(ctx, actor, projectID); err != nil {
		return err
	}

	updates, cancel := h.feed.Subscribe(projectID)
	defer cancel()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return nil
	}
	w.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case msg, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeEvent(w, msg); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

func writeEvent(w *echo.Response, msg *domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: message\ndata: %s\n\n", msg.ID, data)
	return err
}
