package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeEmailSend         = "email:send"
	TypeResetTokenCleanup = "auth:reset-tokens:cleanup"
)

type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type ResetTokenCleanupPayload struct{}

func NewEmailTask(p EmailPayload, opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	allOpts := append([]asynq.Option{asynq.MaxRetry(5), asynq.Timeout(30 * time.Second)}, opts...)
	return asynq.NewTask(TypeEmailSend, payloadBytes, allOpts...), nil
}

func NewResetTokenCleanupTask(opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(ResetTokenCleanupPayload{})
	if err != nil {
		return nil, err
	}

	uniqueOpt := asynq.Unique(1 * time.Hour)
	allOpts := append(opts, uniqueOpt, asynq.Queue("low"))

	return asynq.NewTask(TypeResetTokenCleanup, payloadBytes, allOpts...), nil
}
