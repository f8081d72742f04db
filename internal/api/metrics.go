package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var replayStreams = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "wardops_replay_streams_active",
	Help: "Number of replay websocket streams currently open.",
})
