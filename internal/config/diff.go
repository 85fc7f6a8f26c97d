package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged  bool
	NewLogLevel      LogLevel
	TariffChanged    bool
	DetectionChanged bool
	PlaybackChanged  bool
}

// Any reports whether the diff carries at least one change.
func (d ConfigDiff) Any() bool {
	return d.LogLevelChanged || d.TariffChanged || d.DetectionChanged || d.PlaybackChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart; backend and
// server settings require one.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if old.Tariff != new.Tariff {
		d.TariffChanged = true
	}
	if old.Detection != new.Detection {
		d.DetectionChanged = true
	}
	if old.Playback != new.Playback {
		d.PlaybackChanged = true
	}

	return d
}
