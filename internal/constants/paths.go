package constants

// DefaultConfigPath is the default path to the config.toml file
const DefaultConfigPath = "./config.toml"

// DefaultSnapshotPath is where the file backend keeps the clock snapshot
const DefaultSnapshotPath = "./data/snapshot.json"

// DefaultSQLitePath is the database file of the sqlite backend
const DefaultSQLitePath = "./data/snapshot.db"

// DefaultEnvPath is the default path to the .env file
const DefaultEnvPath = "./.env"
