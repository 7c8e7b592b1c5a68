package api

import "time"

type (
	// TimerState describes one registered timer
	TimerState struct {
		ID                int64             `json:"id"`
		ProcessInstanceID ProcessInstanceID `json:"process_instance_id"`
		SessionID         SessionID         `json:"session_id"`
		DelayMS           int64             `json:"delay_ms"`
		PeriodMS          int64             `json:"period_ms"`
		RepeatLimit       int               `json:"repeat_limit"`
		CronExpression    string            `json:"cron_expression,omitempty"`
		Activated         time.Time         `json:"activated"`
		LastTriggered     *time.Time        `json:"last_triggered,omitempty"`
		ProcessID         string            `json:"process_id,omitempty"`
	}

	// TimersListResponse contains every registered timer
	TimersListResponse struct {
		Timers []*TimerState `json:"timers"`
		Count  int           `json:"count"`
	}

	// TimerCancelledResponse is returned when a timer cancel succeeds
	TimerCancelledResponse struct {
		Message string `json:"message"`
		ID      int64  `json:"id"`
	}

	// HealthResponse provides service health information
	HealthResponse struct {
		Service   string    `json:"service"`
		Version   string    `json:"version"`
		Status    string    `json:"status"`
		SessionID SessionID `json:"session_id"`
		Active    bool      `json:"active"`
		Timers    int       `json:"timers"`
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}
)

const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
)
