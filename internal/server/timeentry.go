package server

import "github.com/gin-gonic/gin"

// ListTimeEntries handles GET /api/v1/time-entries. Entries come back
// decorated, with degraded sentinels in place of missing references.
func (s *Server) ListTimeEntries(c *gin.Context) {
	filter, ok := s.bindEntryFilter(c)
	if !ok {
		return
	}

	entries, err := s.entryLoader.Load(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, entries)
}
