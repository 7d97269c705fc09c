// Package metrics регистрирует Prometheus-счётчики приложения.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LoginAttempts считает попытки входа по исходу:
// success, invalid_credentials, locked, not_active, mfa_required.
var LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "newsroom_login_attempts_total",
	Help: "Login attempts by outcome.",
}, []string{"outcome"})

// LockoutsTriggered считает срабатывания блокировки учётных записей.
var LockoutsTriggered = promauto.NewCounter(prometheus.CounterOpts{
	Name: "newsroom_lockouts_triggered_total",
	Help: "Accounts locked after repeated login failures.",
})

// ArticleViews считает просмотры опубликованных статей.
var ArticleViews = promauto.NewCounter(prometheus.CounterOpts{
	Name: "newsroom_article_views_total",
	Help: "Public article reads.",
})
