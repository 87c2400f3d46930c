package usecase

import "github.com/VictoriaMetrics/metrics"

var (
	pressThrottledCounter = metrics.NewCounter(`button_presses_throttled_total`)
	roomsCreatedCounter   = metrics.NewCounter(`rooms_created_total`)
	roomsDeletedCounter   = metrics.NewCounter(`rooms_deleted_total`)
	roomsForgottenCounter = metrics.NewCounter(`rooms_forgotten_total`)
	buttonsLoadedCounter  = metrics.NewCounter(`buttons_loaded_total`)

	buttonPressesCounter = func(button string) *metrics.Counter {
		return metrics.GetOrCreateCounter(`button_presses_total{button="` + button + `"}`)
	}
	actionsDispatchedCounter = func(kind, status string) *metrics.Counter {
		return metrics.GetOrCreateCounter(`actions_dispatched_total{kind="` + kind + `",status="` + status + `"}`)
	}
)
