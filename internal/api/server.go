package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewHTTPServer wires every route of the site API.
func NewHTTPServer(addr string, h *Handler) *http.Server {
	r := gin.New()
	r.Use(gin.Recovery(), Observability(h.logger()))

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.POST("/rsvp", RateLimit(h.RSVPPerMinute), h.SubmitRSVP)

	admin := api.Group("/admin", AdminGate(h.AdminToken))
	admin.GET("/parties", h.ListParties)
	admin.POST("/parties", h.CreateParty)
	admin.DELETE("/parties/:id", h.DeleteParty)
	admin.POST("/parties/import", h.ImportParties)
	admin.GET("/parties/export", h.ExportParties)

	admin.GET("/campaigns", h.ListCampaigns)
	admin.PUT("/campaigns/:title", h.PutCampaign)
	admin.DELETE("/campaigns/:title", h.DeleteCampaign)

	admin.GET("/reminders/history", h.ReminderHistory)
	admin.POST("/reminders/run", h.RunReminders)

	return &http.Server{
		Addr:    addr,
		Handler: r,
	}
}
