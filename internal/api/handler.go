package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"WeddingSite/internal/csvparser"
	"WeddingSite/internal/db"
	"WeddingSite/internal/metrics"
	"WeddingSite/internal/models"
)

type storeAPI interface {
	Ping(ctx context.Context) error

	SubmitRSVP(ctx context.Context, sub models.RSVPSubmission, at time.Time) (*models.Party, error)
	ListParties(ctx context.Context) ([]models.Party, error)
	CreateParty(ctx context.Context, p *models.Party) error
	ImportParties(ctx context.Context, parties []models.Party) (int, error)
	DeleteParty(ctx context.Context, id string) error

	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	UpsertCampaign(ctx context.Context, c models.Campaign) error
	DeleteCampaign(ctx context.Context, title string) error

	History(ctx context.Context, f models.HistoryFilter) ([]models.SendLogEntry, error)
	Get(ctx context.Context, key models.SendKey) (*models.SendLogEntry, error)
}

type reminderRunner interface {
	Run(ctx context.Context) models.Summary
}

type templateSet interface {
	Has(index int) bool
}

type Handler struct {
	Store     storeAPI
	Reminders reminderRunner
	Templates templateSet
	Log       *zap.Logger

	AdminToken    string
	RSVPPerMinute int
	Now           func() time.Time
}

const maxImportBytes = 1 << 20

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		h.logger().Warn("health check failed", zap.Error(err))
		c.String(http.StatusServiceUnavailable, "db unavailable")
		return
	}
	c.String(http.StatusOK, "ok")
}

type rsvpReq struct {
	Email     string `json:"email"     binding:"required,email"`
	Attending *bool  `json:"attending" binding:"required"`
	Headcount int    `json:"headcount" binding:"min=0,max=20"`
	Message   string `json:"message"   binding:"max=2000"`
}

func (h *Handler) SubmitRSVP(c *gin.Context) {
	var req rsvpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Attending && req.Headcount < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "headcount must be at least 1 when attending"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	party, err := h.Store.SubmitRSVP(ctx, models.RSVPSubmission{
		Email:     req.Email,
		Attending: *req.Attending,
		Headcount: req.Headcount,
		Message:   strings.TrimSpace(req.Message),
	}, h.now())
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "we could not find an invitation for that email"})
		return
	}
	if err != nil {
		h.logger().Error("rsvp_submit_error", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save rsvp"})
		return
	}

	metrics.RSVPSubmissions.WithLabelValues(strconv.FormatBool(*req.Attending)).Inc()
	c.JSON(http.StatusOK, gin.H{
		"display_name": party.DisplayName,
		"rsvp_status":  party.RSVPStatus,
		"headcount":    party.Headcount,
	})
}

func (h *Handler) ListParties(c *gin.Context) {
	parties, err := h.Store.ListParties(c.Request.Context())
	if err != nil {
		h.logger().Error("list_parties_error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list error"})
		return
	}
	c.JSON(http.StatusOK, parties)
}

type partyReq struct {
	DisplayName      string     `json:"display_name"      binding:"required"`
	ContactEmail     string     `json:"contact_email"     binding:"omitempty,email"`
	RSVPDeadline     *time.Time `json:"rsvp_deadline"`
	RemindersEnabled *bool      `json:"reminders_enabled"`
}

func (h *Handler) CreateParty(c *gin.Context) {
	var req partyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := models.Party{
		DisplayName:      strings.TrimSpace(req.DisplayName),
		ContactEmail:     strings.TrimSpace(req.ContactEmail),
		RSVPDeadline:     req.RSVPDeadline,
		RemindersEnabled: req.ContactEmail != "",
		RSVPStatus:       models.RSVPPending,
	}
	if req.RemindersEnabled != nil {
		p.RemindersEnabled = *req.RemindersEnabled
	}

	if err := h.Store.CreateParty(c.Request.Context(), &p); err != nil {
		h.logger().Error("create_party_error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create error"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) DeleteParty(c *gin.Context) {
	err := h.Store.DeleteParty(c.Request.Context(), c.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "party not found"})
		return
	}
	if err != nil {
		h.logger().Error("delete_party_error", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete error"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ImportParties(c *gin.Context) {
	parties, err := csvparser.ParseGuestRows(io.LimitReader(c.Request.Body, maxImportBytes), 2000)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	n, err := h.Store.ImportParties(ctx, parties)
	if err != nil {
		h.logger().Error("import_parties_error", zap.Int("rows", len(parties)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n})
}

func (h *Handler) ExportParties(c *gin.Context) {
	parties, err := h.Store.ListParties(c.Request.Context())
	if err != nil {
		h.logger().Error("export_parties_error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export error"})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="guest-list.csv"`)
	c.Status(http.StatusOK)
	if err := csvparser.WriteGuestList(c.Writer, parties); err != nil {
		h.logger().Error("export_write_error", zap.Error(err))
	}
}

func (h *Handler) ListCampaigns(c *gin.Context) {
	campaigns, err := h.Store.ListCampaigns(c.Request.Context())
	if err != nil {
		h.logger().Error("list_campaigns_error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list error"})
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

type campaignReq struct {
	TemplateIndex      int        `json:"template_index"       binding:"min=0"`
	SendAt             *time.Time `json:"send_at"`
	DaysBeforeDeadline *int       `json:"days_before_deadline" binding:"omitempty,min=0"`
}

// PutCampaign creates or replaces the campaign named in the path. Exactly
// one schedule field is accepted here even though the dispatcher tolerates
// rows that violate it.
func (h *Handler) PutCampaign(c *gin.Context) {
	title := strings.TrimSpace(c.Param("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	var req campaignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if (req.SendAt == nil) == (req.DaysBeforeDeadline == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "set exactly one of send_at and days_before_deadline"})
		return
	}
	if h.Templates != nil && !h.Templates.Has(req.TemplateIndex) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown template_index"})
		return
	}

	camp := models.Campaign{
		Title:              title,
		TemplateIndex:      req.TemplateIndex,
		SendAt:             req.SendAt,
		DaysBeforeDeadline: req.DaysBeforeDeadline,
	}
	if err := h.Store.UpsertCampaign(c.Request.Context(), camp); err != nil {
		h.logger().Error("upsert_campaign_error", zap.String("title", title), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save error"})
		return
	}
	c.JSON(http.StatusOK, camp)
}

func (h *Handler) DeleteCampaign(c *gin.Context) {
	err := h.Store.DeleteCampaign(c.Request.Context(), c.Param("title"))
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}
	if err != nil {
		h.logger().Error("delete_campaign_error", zap.String("title", c.Param("title")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ReminderHistory lists send log entries. With day set it looks up the one
// entry keyed by campaign, email and day instead.
func (h *Handler) ReminderHistory(c *gin.Context) {
	campaign := c.Query("campaign")
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))

	if day := c.Query("day"); day != "" {
		h.reminderEntry(c, models.SendKey{CampaignTitle: campaign, RecipientEmail: email, DayBucket: day})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.Store.History(c.Request.Context(), models.HistoryFilter{
		Campaign: campaign,
		Email:    email,
		Limit:    limit,
	})
	if err != nil {
		h.logger().Error("reminder_history_error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history error"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) reminderEntry(c *gin.Context, key models.SendKey) {
	if key.CampaignTitle == "" || key.RecipientEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day requires campaign and email"})
		return
	}
	if _, err := time.Parse("2006-01-02", key.DayBucket); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
		return
	}

	entry, err := h.Store.Get(c.Request.Context(), key)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no reminder logged for that day"})
		return
	}
	if err != nil {
		h.logger().Error("reminder_entry_error", zap.String("campaign", key.CampaignTitle), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history error"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) RunReminders(c *gin.Context) {
	sum := h.Reminders.Run(c.Request.Context())
	if !sum.OK {
		c.JSON(http.StatusInternalServerError, sum)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) logger() *zap.Logger {
	if h.Log != nil {
		return h.Log
	}
	return zap.NewNop()
}
