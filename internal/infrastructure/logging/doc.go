// Package logging is the bridge's slog wrapper.
//
// One Logger is built from config.yaml at startup and handed to each
// subsystem, scoped with Component:
//
//	log := logging.New(cfg.Logging, version)
//	scanner.SetLogger(log.Component("scanner"))
//
// Because Logger embeds *slog.Logger, it satisfies the single-method
// Logger interfaces the owserver, discovery, readings and mqtt packages
// declare, so subsystems never import this package directly.
//
// Records carry service and version fields on every line. JSON output is
// the production default; text is for watching a bridge interactively.
// MQTT credentials and InfluxDB tokens must never appear in log fields.
package logging
