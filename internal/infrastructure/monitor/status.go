package monitor

import "time"

type Status struct {
	PostgreSQL    bool      `json:"postgresql"`
	Redis         bool      `json:"redis"`
	Outbox        bool      `json:"outbox"`
	OutboxPending int       `json:"outbox_pending"`
	OutboxDead    int       `json:"outbox_dead"`
	LastCheck     time.Time `json:"last_check"`
}

// Healthy reports whether every dependency answered.
func (s Status) Healthy() bool {
	return s.PostgreSQL && s.Redis && s.Outbox
}
