package mailer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/curriculo/apiserver/config"
)

const publishTimeout = 10 * time.Second

// Email is the queued delivery job: a rendered HTML message.
type Email struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Queue is the transport the mailer publishes on. The production
// implementation is mq.MQ.
type Queue interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// Mailer enqueues outbound email. Dispatch is fire-and-forget: the request
// path never waits on the broker, and a failed publish is logged, not
// surfaced to the caller.
type Mailer struct {
	queue   Queue
	channel string
	appName string
}

func NewMailer(queue Queue, cfg config.MailConfig, appName string) *Mailer {
	return &Mailer{
		queue:   queue,
		channel: cfg.Queue,
		appName: appName,
	}
}

// Send hands the email to the queue on a detached goroutine.
func (m *Mailer) Send(email Email) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := m.publish(ctx, email); err != nil {
			log.Printf("mailer: failed to enqueue email to %v: %v", email.To, err)
		}
	}()
}

func (m *Mailer) publish(ctx context.Context, email Email) error {
	data, err := json.Marshal(email)
	if err != nil {
		return err
	}
	_, err = m.queue.Publish(ctx, m.channel, data, map[string]string{"app": m.appName})
	return err
}
