package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RemindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Total reminder emails sent",
		},
	)

	ReminderFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_failures_total",
			Help: "Total failed reminder sends by failure kind",
		},
		[]string{"kind"},
	)

	ReminderDuplicates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_duplicates_total",
			Help: "Claims lost to an existing send log entry",
		},
	)

	MalformedCampaigns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_malformed_campaigns_total",
			Help: "Campaign rows skipped because their schedule is malformed",
		},
	)

	ReminderRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_runs_total",
			Help: "Dispatcher runs by result",
		},
		[]string{"result"},
	)

	ReminderRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reminder_run_duration_seconds",
			Help:    "Time spent in one dispatcher run",
			Buckets: prometheus.DefBuckets,
		},
	)

	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "api_http_requests_total", Help: "HTTP requests"},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RSVPSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsvp_submissions_total",
			Help: "RSVP submissions by answer",
		},
		[]string{"attending"},
	)
)

func Init() {
	prometheus.MustRegister(
		RemindersSent, ReminderFailures, ReminderDuplicates, MalformedCampaigns,
		ReminderRuns, ReminderRunDuration,
		APIRequestsTotal, APIRequestDuration, RSVPSubmissions,
	)
}
