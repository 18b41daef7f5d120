package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricsNamespace groups the Kafka metrics with the rest of the bridge's
// instrumentation.
const metricsNamespace = "search_bridge"

func kafkaCounter(name, help string, labels []string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      name,
		Help:      help,
	}, labels)
}

func kafkaHistogram(name, help string, labels []string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      name,
		Help:      help,
		Buckets:   prometheus.DefBuckets,
	}, labels)
}

var (
	consumerLabels = []string{"topic", "consumer_group"}
	producerLabels = []string{"topic"}

	// ConsumerMessagesReceived counts messages fetched from the broker,
	// before processing.
	ConsumerMessagesReceived = kafkaCounter("kafka_consumer_messages_received_total",
		"Total number of Kafka messages received (fetched from broker)", consumerLabels)

	// ConsumerMessagesProcessed counts successfully handled messages.
	ConsumerMessagesProcessed = kafkaCounter("kafka_consumer_messages_processed_total",
		"Total number of successfully processed Kafka messages", consumerLabels)

	// ConsumerMessagesFailed counts messages that exhausted their retries.
	ConsumerMessagesFailed = kafkaCounter("kafka_consumer_messages_failed_total",
		"Total number of Kafka messages that failed all retries (sent to DLQ or dropped)", consumerLabels)

	// ConsumerDLQPublished counts messages parked on a dead-letter topic.
	ConsumerDLQPublished = kafkaCounter("kafka_consumer_dlq_published_total",
		"Total number of messages published to dead-letter queue", consumerLabels)

	// ConsumerProcessingDuration observes handler execution time.
	ConsumerProcessingDuration = kafkaHistogram("kafka_consumer_processing_duration_seconds",
		"Duration of Kafka message processing in seconds", consumerLabels)

	// ProducerMessagesPublished counts published messages.
	ProducerMessagesPublished = kafkaCounter("kafka_producer_messages_published_total",
		"Total number of Kafka messages published", producerLabels)

	// ProducerPublishErrors counts publish failures.
	ProducerPublishErrors = kafkaCounter("kafka_producer_publish_errors_total",
		"Total number of Kafka publish errors", producerLabels)

	// ProducerPublishDuration observes publish round-trip time.
	ProducerPublishDuration = kafkaHistogram("kafka_producer_publish_duration_seconds",
		"Duration of Kafka publish operations in seconds", producerLabels)
)
