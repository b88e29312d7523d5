package monitor

import "time"

type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	SMTP       bool      `json:"smtp"`
	Outbox     bool      `json:"outbox"`
	OutboxSize int       `json:"outbox_size"`
	LastCheck  time.Time `json:"last_check"`
}
