package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"circles-claim-reminder/internal/domain/entity"
	"circles-claim-reminder/internal/domain/service"
	"circles-claim-reminder/internal/infrastructure/config"
	"circles-claim-reminder/internal/infrastructure/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSReminderDispatcher implements ReminderDispatcher interface
type NATSReminderDispatcher struct {
	conn   *nats.Conn
	config *config.NATSConfig
	logger *logger.Logger
}

// NewNATSReminderDispatcher creates a new NATS reminder dispatcher
func NewNATSReminderDispatcher(cfg *config.NATSConfig, logger *logger.Logger) *NATSReminderDispatcher {
	return &NATSReminderDispatcher{
		config: cfg,
		logger: logger.WithComponent("nats-dispatcher"),
	}
}

// Connect connects the dispatcher to the NATS server
func (d *NATSReminderDispatcher) Connect(ctx context.Context) error {
	if !d.config.Enabled {
		d.logger.Info("NATS is disabled, skipping connection")
		return nil
	}

	conn, err := dial(d.config, "claim-reminder-dispatcher", d.logger)
	if err != nil {
		d.logger.Error("Failed to connect to NATS", zap.Error(err))
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	d.conn = conn
	d.logger.Info("Dispatcher connected to NATS", zap.String("url", d.config.URL))
	return nil
}

// Dispatch publishes one reminder message to the channel's broadcast subject
func (d *NATSReminderDispatcher) Dispatch(ctx context.Context, msg entity.ReminderMessage) error {
	if d.conn == nil || !d.conn.IsConnected() {
		return fmt.Errorf("nats connection is not established")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder message: %w", err)
	}

	subject := fmt.Sprintf("%s.broadcast.%s", d.config.SubjectPrefix, msg.Channel)
	if err := d.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish reminder: %w", err)
	}
	if err := d.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush reminder: %w", err)
	}

	d.logger.Debug("Published reminder",
		zap.String("subject", subject),
		zap.String("priority", string(msg.Priority)))

	return nil
}

// Disconnect closes the dispatcher connection
func (d *NATSReminderDispatcher) Disconnect() error {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
	d.logger.Info("Dispatcher disconnected from NATS")
	return nil
}

var _ service.ReminderDispatcher = (*NATSReminderDispatcher)(nil)
