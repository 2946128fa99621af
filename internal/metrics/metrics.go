// Package metrics регистрирует счётчики Prometheus для решений
// ядра авторизации и обращений к ИИ-провайдеру.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthorizeDecisions считает решения авторизации по результату:
	// allow либо причина отказа.
	AuthorizeDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aipro_authorize_decisions_total",
		Help: "Authorization decisions by outcome.",
	}, []string{"outcome"})

	// ChatRequests считает обращения к чату по исходу: completed или denied.
	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aipro_chat_requests_total",
		Help: "Chat requests by outcome.",
	}, []string{"result"})

	// PaymentsApproved считает платежи, переведённые в статус paid.
	PaymentsApproved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aipro_payments_approved_total",
		Help: "Payments transitioned to paid.",
	})
)
