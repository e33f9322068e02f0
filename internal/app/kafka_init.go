package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
	"github.com/vladislavdragonenkov/fleetfeast/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/fleetfeast/internal/notify"
)

// initKafkaProducer инициализирует Kafka producer если brokers не пустой.
// Возвращает nil, nil если brokers пустой.
func initKafkaProducer(brokers []string, logger *log.Entry) (*kafka.Producer, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokers)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer, nil
}

// initNotifier выбирает Kafka, если она настроена и доступна, иначе лог.
func initNotifier(cfg Config, logger *log.Entry) (domain.Notifier, func() error) {
	producer, err := initKafkaProducer(cfg.Brokers(), logger)
	if err != nil || producer == nil {
		return notify.NewLogNotifier(logger.WithField("layer", "notify-log")), nil
	}

	notifier := kafka.NewNotifier(producer, cfg.NotifyTopic)
	logger.WithField("topic", notifier.Topic()).Info("customer notifications go to kafka")
	return notifier, func() error {
		closeKafka(producer, logger)
		return nil
	}
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
