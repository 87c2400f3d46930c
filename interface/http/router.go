package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/alexmorbo/bttn-relay/interface/http/handler"
	"github.com/alexmorbo/bttn-relay/interface/http/middleware"
)

type Handlers struct {
	Press  *handler.PressHandler
	Call   *handler.CallHandler
	Admin  *handler.AdminHandler
	Index  *handler.IndexHandler
	Health *handler.HealthHandler
}

func NewRouter(log *slog.Logger, h Handlers, filesDir string) *gin.Engine {
	router := gin.New()

	// Recovery for all routes
	router.Use(middleware.Recovery(log))
	router.SetHTMLTemplate(handler.IndexTemplate)

	// Health endpoints, only recovery middleware
	router.GET("/health/live", h.Health.Live)
	router.GET("/health/ready", h.Health.Ready)
	router.GET("/metrics", h.Health.Metrics)
	router.GET("/ping", h.Health.Ping)

	router.Static("/files", filesDir)

	// Button routes answer both methods: the device issues GET or POST
	// depending on its firmware, Twilio fetches TwiML with POST.
	relay := router.Group("/")
	relay.Use(middleware.RequestID())
	relay.Use(middleware.BodyLimit(1 << 20))
	relay.Use(middleware.Metrics())
	relay.Use(middleware.Logging(log))
	{
		both(relay, "/", h.Press.Press)
		both(relay, "/:token", h.Press.Press)
		both(relay, "/call", h.Call.Call)
		both(relay, "/call/:token", h.Call.Call)
		both(relay, "/delete", h.Admin.Delete)
		both(relay, "/delete/:token", h.Admin.Delete)
		both(relay, "/initialise", h.Admin.Initialise)
		both(relay, "/initialise/:token", h.Admin.Initialise)
		both(relay, "/index", h.Index.Index)
		both(relay, "/index/:token", h.Index.Index)
	}

	return router
}

func both(group *gin.RouterGroup, path string, fn gin.HandlerFunc) {
	group.GET(path, fn)
	group.POST(path, fn)
}
