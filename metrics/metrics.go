// Package metrics holds the business counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "homeservice"

// RegistrationsTotal counts completed registrations.
// Label:
//   - role: "customer" or "provider"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered, by role.",
	},
	[]string{"role"},
)

// VerificationsTotal counts email verification attempts.
// Label:
//   - result: "success", "invalid_code", "expired", "exhausted" or "not_found"
var VerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Total number of email verification attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "inactive" or "unverified"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// EmailFailuresTotal counts outbound emails that could not be delivered.
var EmailFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_failures_total",
		Help:      "Total number of emails that failed to send.",
	},
)

// BookingsCreatedTotal counts bookings placed by customers.
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created.",
	},
)

// BookingTransitionsTotal counts applied booking status changes.
// Label:
//   - status: the status the booking moved to
var BookingTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_transitions_total",
		Help:      "Total number of booking status transitions, by target status.",
	},
	[]string{"status"},
)

// MessagesSentTotal counts messages posted on bookings.
var MessagesSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of booking messages posted.",
	},
)

// ProviderDecisionsTotal counts admin decisions on providers and their categories.
// Labels:
//   - subject: "provider" or "category"
//   - decision: "approved" or "rejected"
var ProviderDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_decisions_total",
		Help:      "Total number of admin review decisions.",
	},
	[]string{"subject", "decision"},
)
