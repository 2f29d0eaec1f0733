package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Authentication metrics. Standalone package so providers and the HTTP layer can
// share them without import cycles.

var (
	AuthenticationAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fbauth_authentication_attempts_total",
		Help: "Authentication attempts by provider and final status",
	}, []string{"provider", "status"})

	AccountsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fbauth_accounts_created_total",
		Help: "Accounts created on first successful authentication",
	})

	ProfilesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fbauth_profiles_created_total",
		Help: "Profiles provisioned from identity provider user data",
	})

	GraphRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fbauth_graph_request_duration_seconds",
		Help:    "Latency of Graph API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource", "status"})
)

// Register registers the metrics on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{AuthenticationAttempts, AccountsCreated, ProfilesCreated, GraphRequestDuration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
