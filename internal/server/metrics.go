package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quizFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_proxy_fetches_total",
		Help: "Trivia fetches proxied upstream, by outcome.",
	}, []string{"outcome"})

	submissionsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_submissions_total",
		Help: "Quiz submissions received, by outcome.",
	}, []string{"outcome"})
)
