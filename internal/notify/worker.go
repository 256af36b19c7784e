package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.mau.fi/whatsmeow/types"

	"order-manager/internal/metrics"
	"order-manager/internal/phone"
	"order-manager/internal/queue"
)

// Sender delivers a rendered message to one WhatsApp JID.
type Sender interface {
	SendText(ctx context.Context, to types.JID, text string) error
}

// RiderDirectory resolves the active rider pool for broadcasts.
type RiderDirectory interface {
	ListActiveRiderPhones(ctx context.Context) ([]string, error)
}

// Config wires the worker's fixed recipients and rendering inputs.
type Config struct {
	AdminNumbers []string
	DashboardURL string
}

// Worker drains the notification queue and delivers messages. Sends within a
// job run serially; a failed recipient is logged and skipped so one bad
// number never blocks the rest of a fan-out.
type Worker struct {
	broker  queue.Broker
	sender  Sender
	riders  RiderDirectory
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewWorker(broker queue.Broker, sender Sender, riders RiderDirectory, cfg Config, logger *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{
		broker:  broker,
		sender:  sender,
		riders:  riders,
		cfg:     cfg,
		logger:  logger.With("component", "notify"),
		metrics: m,
	}
}

// Run consumes jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("notification worker started")
	for {
		job, err := w.broker.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error("consume failed", "error", err)
			continue
		}
		if job == nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		if err := w.Process(ctx, job); err != nil {
			w.logger.Error("job failed", "kind", job.Kind, "error", err)
			w.countJob(job.Kind, "error")
			continue
		}
		w.countJob(job.Kind, "ok")
	}
}

// Process renders one job and fans it out. An undecodable payload or unknown
// kind is an error; individual send failures are not.
func (w *Worker) Process(ctx context.Context, job *queue.Job) error {
	switch job.Kind {
	case queue.KindNewOrder:
		var p queue.NewOrderPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return fmt.Errorf("decode new-order payload: %w", err)
		}
		recipients := p.Recipients
		if len(recipients) == 0 {
			recipients = w.cfg.AdminNumbers
		}
		w.sendToAll(ctx, recipients, RenderNewOrder(p, w.cfg.DashboardURL))
		return nil

	case queue.KindNairobiBroadcast:
		var p queue.NairobiBroadcastPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return fmt.Errorf("decode nairobi-broadcast payload: %w", err)
		}
		w.sendToAll(ctx, w.broadcastRecipients(ctx, p.Recipients), RenderNairobiBroadcast(p))
		return nil

	case queue.KindNairobiAssignment:
		var p queue.NairobiAssignmentPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return fmt.Errorf("decode nairobi-assignment payload: %w", err)
		}
		if p.Recipient == "" {
			return errors.New("nairobi-assignment job has no recipient")
		}
		w.sendToAll(ctx, []string{p.Recipient}, RenderNairobiAssignment(p))
		return nil

	case queue.KindAdminNotification:
		var p queue.AdminNotificationPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return fmt.Errorf("decode admin-notification payload: %w", err)
		}
		recipients := p.Recipients
		if len(recipients) == 0 {
			recipients = w.cfg.AdminNumbers
		}
		w.sendToAll(ctx, recipients, RenderAdminNotification(p))
		return nil
	}
	return fmt.Errorf("unknown job kind %q", job.Kind)
}

// broadcastRecipients picks the rider pool for a broadcast: explicit payload
// recipients first, then the active riders, then the admins so the order is
// never announced to nobody.
func (w *Worker) broadcastRecipients(ctx context.Context, explicit []string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	if w.riders != nil {
		phones, err := w.riders.ListActiveRiderPhones(ctx)
		if err != nil {
			w.logger.Error("listing active riders failed, falling back to admins", "error", err)
		} else if len(phones) > 0 {
			return phones
		}
	}
	return w.cfg.AdminNumbers
}

func (w *Worker) sendToAll(ctx context.Context, recipients []string, text string) {
	for _, recipient := range recipients {
		jid := phone.WhatsAppJID(recipient)
		if err := w.sender.SendText(ctx, jid, text); err != nil {
			w.logger.Error("send failed", "to", recipient, "error", err)
			continue
		}
		w.logger.Info("notification sent", "to", recipient)
	}
}

func (w *Worker) countJob(kind queue.Kind, status string) {
	if w.metrics != nil {
		w.metrics.JobsProcessed.WithLabelValues(string(kind), status).Inc()
	}
}
