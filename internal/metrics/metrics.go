package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder groups the helpdesk counters. A nil *Recorder is valid and
// records nothing, so services can be built without a registry in tests.
type Recorder struct {
	ticketsCreated    prometheus.Counter
	ticketUpdates     *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	comments          prometheus.Counter
	mutationFailures  *prometheus.CounterVec
	profileFallbacks  prometheus.Counter
	sessionEvents     *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registers the helpdesk metrics on reg.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		return nil
	}
	r := &Recorder{
		ticketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_tickets_created_total",
			Help: "Tickets opened.",
		}),
		ticketUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_ticket_updates_total",
			Help: "Ticket updates by field group.",
		}, []string{"group"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_ticket_status_transitions_total",
			Help: "Ticket status changes.",
		}, []string{"from", "to"}),
		comments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_ticket_comments_total",
			Help: "Comments appended to tickets.",
		}),
		mutationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_mutation_failures_total",
			Help: "Writes rejected by storage.",
		}, []string{"op"}),
		profileFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_profile_fallbacks_total",
			Help: "Principals resolved to an in-memory profile after a storage error.",
		}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_session_events_total",
			Help: "Session lifecycle events.",
		}, []string{"event"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpdesk_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		r.ticketsCreated, r.ticketUpdates, r.statusTransitions, r.comments,
		r.mutationFailures, r.profileFallbacks, r.sessionEvents, r.httpDuration,
	)
	return r
}

func (r *Recorder) TicketCreated() {
	if r == nil {
		return
	}
	r.ticketsCreated.Inc()
}

func (r *Recorder) TicketUpdated(group string) {
	if r == nil {
		return
	}
	r.ticketUpdates.WithLabelValues(group).Inc()
}

func (r *Recorder) StatusTransition(from, to string) {
	if r == nil {
		return
	}
	r.statusTransitions.WithLabelValues(from, to).Inc()
}

func (r *Recorder) CommentAdded() {
	if r == nil {
		return
	}
	r.comments.Inc()
}

func (r *Recorder) MutationFailed(op string) {
	if r == nil {
		return
	}
	r.mutationFailures.WithLabelValues(op).Inc()
}

func (r *Recorder) ProfileFallback() {
	if r == nil {
		return
	}
	r.profileFallbacks.Inc()
}

func (r *Recorder) SessionEvent(event string) {
	if r == nil {
		return
	}
	r.sessionEvents.WithLabelValues(event).Inc()
}

func (r *Recorder) ObserveHTTP(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
