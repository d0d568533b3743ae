// Package statusapi exposes the daemon's diagnostic HTTP surface.
//
// Status reads go through the same command channel as uplinks, so a
// request landing mid-send blocks briefly behind the channel lock.
package statusapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/danmuck/loractl/internal/lora"
	"github.com/danmuck/loractl/internal/observability"
)

type Server struct {
	client *lora.Client
	router *gin.Engine
}

func NewServer(client *lora.Client, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(observability.RequestLogger(logger))

	s := &Server{client: client, router: router}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "loractl",
		})
	})

	s.router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"joined":      s.client.IsJoined(),
			"queue_depth": s.client.QueueDepth(),
			"rssi":        s.client.RSSI(),
			"snr":         s.client.SNR(),
		})
	})

	observability.RegisterMetrics()
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler returns the router for an http.Server the caller owns.
func (s *Server) Handler() http.Handler {
	return s.router
}
