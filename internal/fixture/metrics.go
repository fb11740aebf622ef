package fixture

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level so multiple Server instances (tests spin several) share one
// registration.
var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traceguard_login_attempts_total",
		Help: "Login attempts by outcome",
	}, []string{"result"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traceguard_http_requests_total",
		Help: "Handled HTTP requests by route and status class",
	}, []string{"route", "class"})
)
