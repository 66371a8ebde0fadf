package monitor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oddbit-project/batchcore/batch"
)

// RegisterRoutes adds the read-only job-management JSON endpoints to an
// existing httpserver.Server's router, mirroring
// blueprint/provider/prometheus.Register's "bolt onto an existing
// server" shape:
//
//	GET <prefix>/jobs       -> every registered job's Snapshot, keyed by
//	                           management name
//	GET <prefix>/jobs/:name -> one job's Snapshot by management name
//
// prefix defaults to "/management" when empty.
func RegisterRoutes(router gin.IRouter, registry *batch.Registry, prefix string) {
	if prefix == "" {
		prefix = "/management"
	}
	group := router.Group(prefix)
	group.GET("/jobs", func(c *gin.Context) {
		c.JSON(http.StatusOK, registry.Snapshot())
	})
	group.GET("/jobs/*name", func(c *gin.Context) {
		name := c.Param("name")
		if len(name) > 0 && name[0] == '/' {
			name = name[1:]
		}
		mon, ok := registry.Get(name)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found", "name": name})
			return
		}
		c.JSON(http.StatusOK, mon.Read())
	})
}
