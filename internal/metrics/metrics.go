// Package metrics defines the Prometheus instruments for the sign-up
// sheet service. Counters register on the default registry and are
// exposed through promhttp in cmd/main.go.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
)

// Signups counts sign-up attempts by outcome.
var Signups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "signupd_signups_total",
	Help: "Sign-up attempts by outcome.",
}, []string{"outcome"})

// Cancellations counts cancellation attempts by outcome.
var Cancellations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "signupd_cancellations_total",
	Help: "Cancellation attempts by outcome.",
}, []string{"outcome"})

// Closes counts close attempts by outcome.
var Closes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "signupd_closes_total",
	Help: "Sheet close attempts by outcome.",
}, []string{"outcome"})
