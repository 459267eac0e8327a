package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/cogentahq/timebill/internal/billing/domain"
	"github.com/cogentahq/timebill/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

// ListClients handles GET /api/v1/clients
func (s *Server) ListClients(c *gin.Context) {
	var query struct {
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	clients, err := s.clientRepo.List(ctx, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	total, err := s.clientRepo.Count(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, clients, query.Pagination.PageInfo(total))
}

// GetClient handles GET /api/v1/clients/:id
func (s *Server) GetClient(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	client, err := s.clientRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if client == nil {
		AbortWithError(c, billingdomain.ErrClientNotFound)
		return
	}

	respondData(c, client)
}
