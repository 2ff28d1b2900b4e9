// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package metrics

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrMetricsAlreadySetup is returned when Setup is called twice.
var ErrMetricsAlreadySetup = errors.New("metrics already set up")

var (
	eventCounter      *prometheus.CounterVec
	tradeFeeCounter   prometheus.Counter
	conversionCounter *prometheus.CounterVec
	claimCounter      prometheus.Counter
)

func init() {
	eventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hydration",
			Subsystem: "broker",
			Name:      "event_count_total",
			Help:      "Number of events sent through the broker",
		},
		[]string{"event"},
	)
	tradeFeeCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hydration",
			Subsystem: "referral",
			Name:      "trade_fees_total",
			Help:      "Number of trade fees processed by the referral engine",
		},
	)
	conversionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hydration",
			Subsystem: "referral",
			Name:      "conversions_total",
			Help:      "Number of reward pot conversion attempts",
		},
		[]string{"status"},
	)
	claimCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hydration",
			Subsystem: "referral",
			Name:      "claims_total",
			Help:      "Number of successful reward claims",
		},
	)

	prometheus.MustRegister(eventCounter, tradeFeeCounter, conversionCounter, claimCounter)
}

// EventCounterInc increments the broker event counter for the given
// event name.
func EventCounterInc(event string) {
	eventCounter.WithLabelValues(event).Inc()
}

// TradeFeeCounterInc increments the processed trade fee counter.
func TradeFeeCounterInc() {
	tradeFeeCounter.Inc()
}

// ConversionCounterInc increments the conversion counter, status is
// either "ok" or "failed".
func ConversionCounterInc(status string) {
	conversionCounter.WithLabelValues(status).Inc()
}

// ClaimCounterInc increments the successful claim counter.
func ClaimCounterInc() {
	claimCounter.Inc()
}

// Handler returns the http handler exposing the prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
