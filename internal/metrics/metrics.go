package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the bot's Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	attendanceOutcomes *prometheus.CounterVec
	escalations        *prometheus.CounterVec
	roleFailures       *prometheus.CounterVec
	storeFailures      *prometheus.CounterVec
	releases           prometheus.Counter
	registrations      prometheus.Counter
	xpAwarded          prometheus.Counter
	mediaSuppressed    prometheus.Counter
	announcements      prometheus.Counter
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		attendanceOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mewoai_attendance_outcomes_total",
			Help: "attendance classifications by outcome",
		}, []string{"outcome"}),
		escalations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mewoai_warning_escalations_total",
			Help: "warning escalations by new tier",
		}, []string{"tier"}),
		roleFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mewoai_role_update_failures_total",
			Help: "role grant/revoke calls rejected by the chat platform",
		}, []string{"op"}),
		storeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mewoai_store_failures_total",
			Help: "record writes that failed inside batch operations",
		}, []string{"op"}),
		releases: factory.NewCounter(prometheus.CounterOpts{
			Name: "mewoai_warning_releases_total",
			Help: "lapsed punishments reverted by the sweeper",
		}),
		registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "mewoai_registrations_total",
			Help: "members registered",
		}),
		xpAwarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "mewoai_xp_awarded_total",
			Help: "xp granted for chat activity",
		}),
		mediaSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Name: "mewoai_media_suppressed_total",
			Help: "media messages deleted by the throttle",
		}),
		announcements: factory.NewCounter(prometheus.CounterOpts{
			Name: "mewoai_announcements_total",
			Help: "announcements posted from the dashboard",
		}),
	}
}

func (m *Metrics) Attendance(outcome string) {
	if m == nil {
		return
	}
	m.attendanceOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Escalated(tier int) {
	if m == nil {
		return
	}
	m.escalations.WithLabelValues(strconv.Itoa(tier)).Inc()
}

func (m *Metrics) RoleFailure(op string) {
	if m == nil {
		return
	}
	m.roleFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) StoreFailure(op string) {
	if m == nil {
		return
	}
	m.storeFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) Released() {
	if m == nil {
		return
	}
	m.releases.Inc()
}

func (m *Metrics) Registered() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}

func (m *Metrics) AddXP(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.xpAwarded.Add(float64(n))
}

func (m *Metrics) MediaSuppressed() {
	if m == nil {
		return
	}
	m.mediaSuppressed.Inc()
}

func (m *Metrics) Announced() {
	if m == nil {
		return
	}
	m.announcements.Inc()
}
