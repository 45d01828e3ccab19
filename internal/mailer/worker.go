package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/curriculo/apiserver/config"
	"github.com/curriculo/apiserver/internal/mq"
)

// Worker drains the mail queue and delivers over SMTP. It runs as its own
// process (the mailworker command) so a slow or down SMTP relay never
// touches the API's request path.
type Worker struct {
	queue   *mq.MQ
	channel string
	cfg     config.MailConfig
}

func NewWorker(queue *mq.MQ, cfg config.MailConfig) *Worker {
	return &Worker{
		queue:   queue,
		channel: cfg.Queue,
		cfg:     cfg,
	}
}

// Run consumes the queue until the context ends. A failed delivery nacks
// the message back to the broker for redelivery.
func (w *Worker) Run(ctx context.Context) error {
	return w.queue.Subscribe(ctx, w.channel, func(ctx context.Context, msg mq.Message) error {
		var email Email
		if err := json.Unmarshal(msg.Data, &email); err != nil {
			// Malformed payloads can never succeed; drop them.
			log.Printf("mailer: dropping malformed message %s: %v", msg.ID, err)
			return nil
		}
		if err := w.deliver(email); err != nil {
			log.Printf("mailer: delivery to %v failed: %v", email.To, err)
			return err
		}
		log.Printf("mailer: delivered %q to %v", email.Subject, email.To)
		return nil
	})
}

func (w *Worker) deliver(email Email) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", w.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(email.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", email.Subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(email.HTML)

	addr := fmt.Sprintf("%s:%d", w.cfg.SMTPHost, w.cfg.SMTPPort)
	var auth smtp.Auth
	if w.cfg.Username != "" {
		auth = smtp.PlainAuth("", w.cfg.Username, w.cfg.Password, w.cfg.SMTPHost)
	}
	return smtp.SendMail(addr, auth, w.cfg.From, email.To, []byte(msg.String()))
}
