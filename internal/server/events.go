package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/courier/pkg/api"
)

func (s *Server) postEvent(c *gin.Context) {
	var ev api.JobEvent
	if !bindJSON(c, &ev) {
		return
	}
	if ev.Type == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  ErrInvalidJSON.Error() + ": missing type",
			Status: http.StatusBadRequest,
		})
		return
	}

	if err := s.engine.Enqueue(ev); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, api.EventAcceptedResponse{Type: ev.Type})
}
