package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"WeddingSite/internal/email"
	"WeddingSite/internal/metrics"
	"WeddingSite/internal/models"
)

// ErrMailerNotConfigured aborts a run before anything is loaded or claimed.
var ErrMailerNotConfigured = errors.New("mail sender not configured")

type RecipientStore interface {
	ListReminderRecipients(ctx context.Context) ([]models.Recipient, error)
}

type CampaignStore interface {
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
}

// SendLog is the durable record of claimed sends. Claim must insert the
// entry unless its key exists and return whichever row holds the key.
type SendLog interface {
	EnsureSchema(ctx context.Context) error
	Claim(ctx context.Context, e models.SendLogEntry) (*models.SendLogEntry, error)
	Release(ctx context.Context, id string) error
}

type Mailer interface {
	Ready() error
	Send(ctx context.Context, to, subject, html string) error
}

type Renderer interface {
	Has(index int) bool
	Render(index int, data TemplateData) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev models.ReminderEvent) error
}

// Dispatcher decides which reminders are due and sends each one at most
// once per campaign, recipient and day bucket.
type Dispatcher struct {
	Recipients RecipientStore
	Campaigns  CampaignStore
	Log        SendLog
	Mailer     Mailer
	Renderer   Renderer
	Events     EventPublisher
	Limiter    *rate.Limiter
	Location   *time.Location
	Logger     *zap.Logger

	Now   func() time.Time
	NewID func() string
}

// Run performs one dispatch pass.
func (d *Dispatcher) Run(ctx context.Context) models.Summary {
	start := time.Now()
	sum := d.run(ctx)

	result := "ok"
	if !sum.OK {
		result = "error"
	}
	metrics.ReminderRuns.WithLabelValues(result).Inc()
	metrics.ReminderRunDuration.Observe(time.Since(start).Seconds())

	return sum
}

func (d *Dispatcher) run(ctx context.Context) models.Summary {
	log := d.logger()

	if err := d.Mailer.Ready(); err != nil {
		err = fmt.Errorf("%w: %v", ErrMailerNotConfigured, err)
		log.Error("reminder run aborted", zap.Error(err))
		return models.Summary{OK: false, Error: err.Error()}
	}

	if err := d.Log.EnsureSchema(ctx); err != nil {
		return d.fail(models.Summary{}, "ensure send log schema", err)
	}

	recipients, err := d.Recipients.ListReminderRecipients(ctx)
	if err != nil {
		return d.fail(models.Summary{}, "load recipients", err)
	}
	recipients = withAddress(recipients)

	campaigns, err := d.Campaigns.ListCampaigns(ctx)
	if err != nil {
		return d.fail(models.Summary{}, "load campaigns", err)
	}

	now := d.now()
	sum := models.Summary{OK: true}

	for _, c := range campaigns {
		kind, reason := classify(c)
		if reason == "" && !d.Renderer.Has(c.TemplateIndex) {
			reason = fmt.Sprintf("unknown template index %d", c.TemplateIndex)
		}
		if reason != "" {
			sum.Malformed++
			sum.Skipped = append(sum.Skipped, c.Title+": "+reason)
			metrics.MalformedCampaigns.Inc()
			log.Warn("skipping malformed campaign",
				zap.String("campaign", c.Title),
				zap.String("reason", reason),
			)
			continue
		}

		attempted := false
		for _, due := range d.dueRecipients(c, kind, recipients, now) {
			if err := ctx.Err(); err != nil {
				if attempted {
					sum.Processed++
				}
				return d.fail(sum, "run cancelled", err)
			}
			attempted = true

			switch d.claimAndSend(ctx, c, kind, due.recipient, due.bucket) {
			case models.OutcomeSent:
				sum.Sent++
			case models.OutcomeDuplicate:
				sum.Duplicates++
			case models.OutcomeFailed:
				sum.Failed++
			}
		}
		if attempted {
			sum.Processed++
		}
	}

	log.Info("reminder run complete",
		zap.Int("processed", sum.Processed),
		zap.Int("sent", sum.Sent),
		zap.Int("duplicates", sum.Duplicates),
		zap.Int("failed", sum.Failed),
		zap.Int("malformed", sum.Malformed),
	)
	return sum
}

type dueRecipient struct {
	recipient models.Recipient
	bucket    string
}

// dueRecipients applies the campaign's scheduling mode. Absolute campaigns
// key on the day of send_at so a late run still lands on the intended bucket;
// relative campaigns key on the day the run executes.
func (d *Dispatcher) dueRecipients(c models.Campaign, kind models.ReminderKind, recipients []models.Recipient, now time.Time) []dueRecipient {
	var out []dueRecipient

	switch kind {
	case models.KindAbsolute:
		if now.Before(*c.SendAt) {
			return nil
		}
		bucket := dayBucket(*c.SendAt, d.location())
		for _, r := range recipients {
			out = append(out, dueRecipient{recipient: r, bucket: bucket})
		}

	case models.KindDaysOut:
		bucket := dayBucket(now, d.location())
		for _, r := range recipients {
			if r.RSVPDeadline == nil {
				continue
			}
			if wholeDaysBetween(now, *r.RSVPDeadline) <= *c.DaysBeforeDeadline {
				out = append(out, dueRecipient{recipient: r, bucket: bucket})
			}
		}
	}

	return out
}

func (d *Dispatcher) claimAndSend(ctx context.Context, c models.Campaign, kind models.ReminderKind, r models.Recipient, bucket string) models.Outcome {
	log := d.logger().With(
		zap.String("campaign", c.Title),
		zap.String("to", r.ContactEmail),
		zap.String("day_bucket", bucket),
	)

	claimID := d.newID()
	entry := models.SendLogEntry{
		ID:             claimID,
		CampaignTitle:  c.Title,
		RecipientEmail: normalizeEmail(r.ContactEmail),
		DayBucket:      bucket,
		Kind:           kind,
		CreatedAt:      d.now(),
	}

	winner, err := d.Log.Claim(ctx, entry)
	if err != nil {
		log.Error("reminder claim failed", zap.Error(err))
		metrics.ReminderFailures.WithLabelValues("claim").Inc()
		d.publish(ctx, entry, models.OutcomeFailed, err)
		return models.OutcomeFailed
	}

	if winner.ID != claimID {
		log.Info("reminder already claimed", zap.String("claim_id", winner.ID))
		metrics.ReminderDuplicates.Inc()
		d.publish(ctx, entry, models.OutcomeDuplicate, nil)
		return models.OutcomeDuplicate
	}

	if err := d.send(ctx, c, r); err != nil {
		kindLabel := string(email.KindOf(err))
		log.Error("reminder send failed",
			zap.String("failure", kindLabel),
			zap.Error(err),
		)
		metrics.ReminderFailures.WithLabelValues(kindLabel).Inc()

		// The claim must not outlive a failed send, even when ctx is done.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if relErr := d.Log.Release(releaseCtx, claimID); relErr != nil {
			log.Error("failed to release reminder claim",
				zap.String("claim_id", claimID),
				zap.Error(relErr),
			)
		}
		cancel()

		d.publish(ctx, entry, models.OutcomeFailed, err)
		return models.OutcomeFailed
	}

	log.Info("reminder sent")
	metrics.RemindersSent.Inc()
	d.publish(ctx, entry, models.OutcomeSent, nil)
	return models.OutcomeSent
}

func (d *Dispatcher) send(ctx context.Context, c models.Campaign, r models.Recipient) error {
	html, err := d.Renderer.Render(c.TemplateIndex, TemplateData{
		DisplayName:       r.DisplayName,
		FormattedDeadline: formatDeadline(r.RSVPDeadline),
	})
	if err != nil {
		return err
	}

	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	return d.Mailer.Send(ctx, r.ContactEmail, c.Title, html)
}

func (d *Dispatcher) publish(ctx context.Context, e models.SendLogEntry, outcome models.Outcome, cause error) {
	if d.Events == nil {
		return
	}
	ev := models.ReminderEvent{
		Campaign:  e.CampaignTitle,
		Email:     e.RecipientEmail,
		DayBucket: e.DayBucket,
		Kind:      e.Kind,
		Outcome:   outcome,
		At:        d.now(),
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	if err := d.Events.Publish(ctx, ev); err != nil {
		d.logger().Warn("failed to publish reminder event",
			zap.String("campaign", e.CampaignTitle),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) fail(sum models.Summary, what string, err error) models.Summary {
	d.logger().Error("reminder run failed", zap.String("step", what), zap.Error(err))
	sum.OK = false
	sum.Error = fmt.Sprintf("%s: %v", what, err)
	return sum
}

func withAddress(in []models.Recipient) []models.Recipient {
	out := make([]models.Recipient, 0, len(in))
	for _, r := range in {
		if normalizeEmail(r.ContactEmail) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Dispatcher) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return uuid.NewString()
}

func (d *Dispatcher) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.UTC
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}
