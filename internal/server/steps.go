package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/steps"
)

func (s *Server) listSteps(c *gin.Context) {
	nss := steps.Namespaces()
	res := make([]api.NamespaceInfo, 0, len(nss))
	for _, ns := range nss {
		f, _ := steps.Lookup(ns)
		res = append(res, api.NamespaceInfo{
			Role:      ns.Role,
			Service:   ns.Service,
			Steps:     f.Sequence(),
			Cancelled: f.Cancelled,
			Search:    f.Search,
		})
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) stepCoverage(c *gin.Context) {
	required := steps.Required()
	cov := s.screens.ValidateCoverage(required)
	c.JSON(http.StatusOK, api.CoverageResponse{
		Complete: cov.Complete,
		Missing:  cov.Missing,
		Count:    len(required),
	})
}
