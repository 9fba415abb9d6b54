package config

// EnvPrefix scopes every environment variable read by Load.
const EnvPrefix = "STOCKROOM"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and tooling.
const (
	EnvAppEnv   = "STOCKROOM_APP_ENV"
	EnvPort     = "STOCKROOM_APP_PORT"
	EnvDBDSN    = "STOCKROOM_DB_DSN"
	EnvDBHost   = "STOCKROOM_DB_HOST"
	EnvDBPort   = "STOCKROOM_DB_PORT"
	EnvDBUser   = "STOCKROOM_DB_USER"
	EnvDBName   = "STOCKROOM_DB_NAME"
	EnvRedisURL = "STOCKROOM_REDIS_URL"

	EnvGCPProjectID = "STOCKROOM_GCP_PROJECT_ID"

	EnvPubSubReservationTopic = "STOCKROOM_PUBSUB_RESERVATION_TOPIC"
	EnvPubSubReservationSub   = "STOCKROOM_PUBSUB_RESERVATION_SUBSCRIPTION"
	EnvPubSubStockTopic       = "STOCKROOM_PUBSUB_STOCK_TOPIC"
	EnvPubSubStockSub         = "STOCKROOM_PUBSUB_STOCK_SUBSCRIPTION"
	EnvPubSubOrderTopic       = "STOCKROOM_PUBSUB_ORDER_TOPIC"
	EnvPubSubOrderSub         = "STOCKROOM_PUBSUB_ORDER_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
