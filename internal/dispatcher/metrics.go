//nolint:gochecknoglobals
package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wingbot",
		Name:      "commands_processed",
		Help:      "The total number of chat commands processed",
	}, []string{"command", "status"})

	buttonsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wingbot",
		Name:      "buttons_processed",
		Help:      "The total number of button actions processed",
	}, []string{"button", "status"})
)
