package service

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"bookshelf/cache"
	"bookshelf/models"
)

const MAX_NUMBER_CACHED = 3

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ActivityHandler records and serves the last requests each user made.
type ActivityHandler struct {
	cacher cache.RequestCacher
	logger *slog.Logger
}

func NewActivityHandler(cacher cache.RequestCacher, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{cacher: cacher, logger: logger}
}

func (h *ActivityHandler) Activity(c *gin.Context) {
	username := c.Param("username")

	userRequests, err := h.cacher.Read(username)

	if err != nil {
		h.logger.Error("failed to read activity", "username", username, "error", err.Error())
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": http.StatusText(http.StatusInternalServerError),
		})
		return
	}

	userRequestsRaw := make([]models.UserRequest, 0, len(userRequests))

	for _, request := range userRequests {
		var userRequest models.UserRequest
		if err := json.UnmarshalFromString(request, &userRequest); err != nil {
			h.logger.Warn("skipping unreadable activity entry", "username", username, "error", err.Error())
			continue
		}
		userRequestsRaw = append(userRequestsRaw, userRequest)
	}

	c.JSON(http.StatusOK, userRequestsRaw)
}

// CacheUserRequest records the request under the username query parameter, if there is one.
// Failing to record never fails the request.
func (h *ActivityHandler) CacheUserRequest(c *gin.Context) {
	username, ok := c.GetQuery("username")

	if !ok || username == "" {
		c.Next()
		return
	}

	request, err := json.Marshal(models.UserRequest{
		Method: c.Request.Method,
		Route:  c.Request.URL.Path,
	})

	if err == nil {
		err = h.cacher.Write(username, request)
	}

	if err != nil {
		h.logger.Warn("failed to record activity", "username", username, "error", err.Error())
	}

	c.Next()
}
