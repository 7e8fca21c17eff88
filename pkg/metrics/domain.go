package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	ModerationApprove     = "approve"
	ModerationReject      = "reject"
	ModerationToggleAdmin = "toggle_admin"
)

// DomainMetrics counts business events.
type DomainMetrics struct {
	signups         prometheus.Counter
	moderation      *prometheus.CounterVec
	likes           *prometheus.CounterVec
	photoCleanupErr prometheus.Counter
}

// NewDomainMetrics registers the domain counters on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	signups := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "placeshare_signups_total",
		Help: "Accounts created through signup.",
	})
	moderation := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "placeshare_moderation_actions_total",
		Help: "Admin moderation transitions, by action.",
	}, []string{"action"})
	likes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "placeshare_like_toggles_total",
		Help: "Like toggles, by resulting state.",
	}, []string{"state"})
	photoCleanupErr := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "placeshare_photo_cleanup_failures_total",
		Help: "Provider photo deletions that failed after a commit.",
	})
	reg.MustRegister(signups, moderation, likes, photoCleanupErr)
	return &DomainMetrics{
		signups:         signups,
		moderation:      moderation,
		likes:           likes,
		photoCleanupErr: photoCleanupErr,
	}
}

func (d *DomainMetrics) IncSignup() {
	if d == nil || d.signups == nil {
		return
	}
	d.signups.Inc()
}

func (d *DomainMetrics) IncModeration(action string) {
	if d == nil || d.moderation == nil {
		return
	}
	d.moderation.WithLabelValues(normalizeLabel(action)).Inc()
}

func (d *DomainMetrics) IncLikeToggle(liked bool) {
	if d == nil || d.likes == nil {
		return
	}
	state := "unliked"
	if liked {
		state = "liked"
	}
	d.likes.WithLabelValues(state).Inc()
}

func (d *DomainMetrics) AddPhotoCleanupFailures(n int) {
	if d == nil || d.photoCleanupErr == nil || n <= 0 {
		return
	}
	d.photoCleanupErr.Add(float64(n))
}
