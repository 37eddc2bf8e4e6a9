package main

type ServiceConfig struct {
	Environment string `env:"STACKLENS_ENVIRONMENT" env-default:"development"`
	Port        string `env:"PORT" env-default:"8080"`

	SentryDSN string `env:"SENTRY_DSN"`

	// TracesBucket selects the GCS bucket holding stored traces. When empty,
	// traces live in an embedded badger DB at BadgerPath (in memory when
	// that is empty too).
	TracesBucket string `env:"TRACES_BUCKET"`
	BadgerPath   string `env:"BADGER_PATH"`

	// Call-node summaries are published to this topic on ingest when
	// brokers are configured.
	CallNodesKafkaBrokers []string `env:"CALL_NODES_KAFKA_BROKERS"`
	CallNodesKafkaTopic   string   `env:"CALL_NODES_KAFKA_TOPIC" env-default:"trace-call-nodes"`
}
