package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"circles-claim-reminder/internal/domain/entity"
	"circles-claim-reminder/internal/infrastructure/config"
	"circles-claim-reminder/internal/infrastructure/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSConsumer receives reminder broadcast requests over NATS
type NATSConsumer struct {
	conn      *nats.Conn
	js        nats.JetStreamContext
	sub       *nats.Subscription
	config    *config.NATSConfig
	logger    *logger.Logger
	reqChan   chan *entity.ReminderRequest
	isRunning atomic.Bool
}

// NewNATSConsumer creates a new NATS consumer
func NewNATSConsumer(cfg *config.NATSConfig, logger *logger.Logger) *NATSConsumer {
	return &NATSConsumer{
		config:  cfg,
		logger:  logger.WithComponent("nats-consumer"),
		reqChan: make(chan *entity.ReminderRequest, cfg.MaxPendingRequests),
	}
}

// Connect connects to NATS server and sets up the request subscription
func (n *NATSConsumer) Connect(ctx context.Context) error {
	if !n.config.Enabled {
		n.logger.Info("NATS is disabled, skipping connection")
		return nil
	}

	n.logger.Info("Connecting to NATS server", zap.String("url", n.config.URL))

	conn, err := dial(n.config, "claim-reminder-consumer", n.logger)
	if err != nil {
		n.logger.Error("Failed to connect to NATS", zap.Error(err))
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	n.conn = conn

	// Try JetStream first, if not available fall back to core NATS
	js, err := conn.JetStream()
	if err != nil {
		n.logger.Warn("JetStream not available, using core NATS", zap.Error(err))
		return n.setupCoreNATSSubscription()
	}

	n.js = js
	return n.setupJetStreamSubscription()
}

// setupJetStreamSubscription binds to the durable pull consumer
func (n *NATSConsumer) setupJetStreamSubscription() error {
	subject := fmt.Sprintf("%s.requests", n.config.SubjectPrefix)
	durable := n.config.ConsumerGroup

	n.logger.Info("Setting up JetStream subscription",
		zap.String("subject", subject),
		zap.String("consumer", durable),
		zap.String("stream", n.config.StreamName))

	sub, err := n.js.PullSubscribe(subject, durable, nats.Bind(n.config.StreamName, durable))
	if err != nil {
		n.logger.Warn("Failed to bind to durable consumer, falling back to core NATS", zap.Error(err))
		return n.setupCoreNATSSubscription()
	}

	n.sub = sub
	n.isRunning.Store(true)

	go n.processJetStreamMessages()

	n.logger.Info("Successfully connected to NATS JetStream",
		zap.String("subject", subject),
		zap.String("consumer", durable))

	return nil
}

// processJetStreamMessages processes requests from the pull subscription
func (n *NATSConsumer) processJetStreamMessages() {
	n.logger.Info("Starting JetStream message processing")

	for n.isRunning.Load() {
		msgs, err := n.sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil {
			if err == nats.ErrTimeout {
				continue
			}
			n.logger.Error("Failed to fetch messages", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			n.handleMessage(msg)
		}
	}

	n.logger.Info("Stopped JetStream message processing")
}

// setupCoreNATSSubscription sets up a queue subscription on core NATS
func (n *NATSConsumer) setupCoreNATSSubscription() error {
	subject := fmt.Sprintf("%s.requests", n.config.SubjectPrefix)
	queueGroup := n.config.ConsumerGroup

	n.logger.Info("Setting up core NATS subscription",
		zap.String("subject", subject),
		zap.String("queue_group", queueGroup))

	sub, err := n.conn.QueueSubscribe(subject, queueGroup, func(msg *nats.Msg) {
		n.handleMessage(msg)
	})

	if err != nil {
		n.logger.Error("Failed to subscribe to subject", zap.Error(err))
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	n.sub = sub
	n.isRunning.Store(true)

	n.logger.Info("Successfully connected to core NATS",
		zap.String("subject", subject),
		zap.String("queue_group", queueGroup))

	return nil
}

// handleMessage decodes an incoming reminder request
func (n *NATSConsumer) handleMessage(msg *nats.Msg) {
	var req entity.ReminderRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		n.logger.Error("Failed to unmarshal reminder request", zap.Error(err))
		if msg.Reply != "" {
			msg.Respond([]byte("ERROR: Failed to unmarshal"))
		}
		return
	}

	n.logger.Debug("Received reminder request",
		zap.String("identifier", req.Identifier),
		zap.String("channel", req.Channel),
		zap.Bool("dry_run", req.DryRun))

	select {
	case n.reqChan <- &req:
		// Acknowledge if it's a JetStream message
		if msg.Reply != "" {
			msg.Ack()
		}
	default:
		// Channel is full
		n.logger.Warn("Request channel is full, dropping request",
			zap.String("identifier", req.Identifier))
		if msg.Reply != "" {
			msg.Nak()
		}
	}
}

// Disconnect disconnects from NATS server
func (n *NATSConsumer) Disconnect() error {
	n.isRunning.Store(false)

	if n.sub != nil {
		n.sub.Unsubscribe()
		n.sub = nil
	}
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}
	// reqChan stays open: a batch fetched before isRunning flipped may still
	// be in flight inside handleMessage. Readers stop via their own context.
	n.logger.Info("Disconnected from NATS")
	return nil
}

// IsConnected checks if connected to NATS
func (n *NATSConsumer) IsConnected() bool {
	return n.isRunning.Load() && n.conn != nil && n.conn.IsConnected()
}

// GetRequestChannel returns the channel of decoded reminder requests
func (n *NATSConsumer) GetRequestChannel() <-chan *entity.ReminderRequest {
	return n.reqChan
}
