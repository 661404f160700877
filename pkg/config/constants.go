package config

// EnvPrefix is passed to envconfig; individual fields carry full names.
const EnvPrefix = "DACSAN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "DACSAN_DB_DSN"
	EnvDBHost = "DACSAN_DB_HOST"
	EnvDBUser = "DACSAN_DB_USER"
	EnvDBName = "DACSAN_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
