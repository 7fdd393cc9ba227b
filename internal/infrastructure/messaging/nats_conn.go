package messaging

import (
	"circles-claim-reminder/internal/infrastructure/config"
	"circles-claim-reminder/internal/infrastructure/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// dial opens a NATS connection with the shared reconnect and logging
// behavior. The consumer and the dispatcher each hold their own connection so
// a slow broadcast cannot stall request intake.
func dial(cfg *config.NATSConfig, name string, log *logger.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(cfg.ConnectTimeout),
		nats.ReconnectWait(cfg.ReconnectDelay),
		nats.MaxReconnects(cfg.ReconnectAttempts),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	return nats.Connect(cfg.URL, opts...)
}
