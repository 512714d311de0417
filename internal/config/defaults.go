package config

const (
	defaultPort            = "8080"
	defaultSSLPort         = "8443"
	defaultSessionMinutes  = "1440"
	defaultMaxDownloadMiB  = "250"
	defaultSearchResults   = "20"
	defaultBrowserMaxFiles = "100"
	defaultServerName      = "cadenza"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
)

// Defaults returns the built-in configuration snapshot. Every key the server
// understands appears here; the persisted file and CLI overrides are layered
// on top of it by Resolve.
func Defaults() Snapshot {
	return NewSnapshot(
		Property{Key: "server.port", Value: defaultPort, Validate: portRule()},
		Property{Key: "server.ssl_enabled", Value: "false", Validate: boolRule()},
		Property{Key: "server.ssl_port", Value: defaultSSLPort, Validate: portRule()},
		Property{Key: "server.ssl_certificate", Value: "certs/server.crt", Validate: pathRule()},
		Property{Key: "server.ssl_private_key", Value: "certs/server.key", Validate: pathRule()},
		Property{Key: "server.localhost_only", Value: "false", Validate: boolRule()},
		Property{Key: "server.ipv6_enabled", Value: "false", Validate: boolRule()},
		Property{Key: "server.rootpath", Value: "/"},
		Property{Key: "server.keep_session_in_ram", Value: "false", Validate: boolRule()},
		Property{Key: "server.session_duration", Value: defaultSessionMinutes, Hidden: true, Validate: intRule(1, 60*24*30)},
		Property{Key: "media.basedir", Value: "", Validate: pathRule()},
		Property{Key: "media.transcode", Value: "false", Validate: boolRule()},
		Property{Key: "media.fetch_album_art", Value: "true", Validate: boolRule()},
		Property{Key: "media.maximum_download_size", Value: defaultMaxDownloadMiB, Validate: intRule(1, 1<<20)},
		Property{Key: "search.maxresults", Value: defaultSearchResults, Validate: intRule(1, 1000)},
		Property{Key: "search.load_file_db_into_memory", Value: "false", Hidden: true, Validate: boolRule()},
		Property{Key: "browser.maxshowfiles", Value: defaultBrowserMaxFiles, Validate: intRule(1, 10000)},
		Property{Key: "browser.pure_database_lookup", Value: "false", Validate: boolRule()},
		Property{Key: "general.name", Value: defaultServerName},
		Property{Key: "general.update_notification", Value: "true", Validate: boolRule()},
		Property{Key: "general.log_level", Value: defaultLogLevel, Validate: oneOfRule("debug", "info", "warn", "error")},
		Property{Key: "general.log_format", Value: defaultLogFormat, Hidden: true, Validate: oneOfRule("console", "json")},
	)
}
