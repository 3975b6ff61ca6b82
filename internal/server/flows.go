package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/courier/internal/screens"
	"github.com/kode4food/courier/pkg/api"
)

func (s *Server) getFlow(c *gin.Context) {
	c.JSON(http.StatusOK, s.flowResponse())
}

func (s *Server) startFlow(c *gin.Context) {
	var req api.StartRequest
	if !bindJSON(c, &req) {
		return
	}
	_, err := s.store.Start(req.Role)
	s.respond(c, err)
}

func (s *Server) startService(c *gin.Context) {
	var req api.StartServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	_, err := s.store.StartService(
		c.Request.Context(), req.Service, req.Role,
	)
	s.respond(c, err)
}

func (s *Server) nextStep(c *gin.Context) {
	s.store.Next()
	c.JSON(http.StatusOK, s.flowResponse())
}

func (s *Server) prevStep(c *gin.Context) {
	s.store.Back()
	c.JSON(http.StatusOK, s.flowResponse())
}

func (s *Server) goTo(c *gin.Context) {
	var req api.GoToRequest
	if !bindJSON(c, &req) {
		return
	}
	_, err := s.store.GoTo(req.Step)
	s.respond(c, err)
}

func (s *Server) stopFlow(c *gin.Context) {
	s.store.Stop()
	c.JSON(http.StatusOK, s.flowResponse())
}

func (s *Server) resetFlow(c *gin.Context) {
	s.store.Reset()
	c.JSON(http.StatusOK, s.flowResponse())
}

func (s *Server) assignJob(c *gin.Context) {
	var req api.AssignJobRequest
	if !bindJSON(c, &req) {
		return
	}
	_, err := s.store.AssignJob(req.JobID)
	s.respond(c, err)
}

func (s *Server) setOrigin(c *gin.Context) {
	var loc api.Location
	if !bindJSON(c, &loc) {
		return
	}
	s.respond(c, s.store.SetConfirmedOrigin(loc))
}

func (s *Server) setDestination(c *gin.Context) {
	var loc api.Location
	if !bindJSON(c, &loc) {
		return
	}
	s.respond(c, s.store.SetConfirmedDestination(loc))
}

func (s *Server) setPhone(c *gin.Context) {
	var req api.PhoneRequest
	if !bindJSON(c, &req) {
		return
	}
	s.store.SetPhoneNumber(req.PhoneNumber)
	c.JSON(http.StatusOK, s.flowResponse())
}

func (s *Server) setRideType(c *gin.Context) {
	var req api.RideTypeRequest
	if !bindJSON(c, &req) {
		return
	}
	s.store.SetRideType(req.RideType)
	c.JSON(http.StatusOK, s.flowResponse())
}

func (s *Server) respond(c *gin.Context, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.flowResponse())
}

func (s *Server) flowResponse() api.FlowResponse {
	st := s.store.State()
	res := s.screens.Render(st)
	scr := res.UnitOr(screens.Placeholder(res.Request))
	return api.FlowResponse{
		State:  st,
		Screen: scr.Name,
		Tier:   res.Tier.String(),
	}
}
