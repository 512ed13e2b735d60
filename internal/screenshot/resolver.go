package screenshot

// Settings is the process-wide screenshot configuration the pipeline reads on
// every invocation
type Settings struct {
	// DefaultMaxWidth applies when a request carries no max width. Zero means
	// no default.
	DefaultMaxWidth uint32
	Filter          Filter
}

// SettingsFunc returns the current settings. It is called once per capture so
// reloaded configuration takes effect on the next call.
type SettingsFunc func() Settings

// StaticSettings returns a SettingsFunc that always yields s
func StaticSettings(s Settings) SettingsFunc {
	return func() Settings { return s }
}

// ResolveMaxWidth picks the effective width ceiling. An explicit request value
// wins verbatim, zero included; otherwise a non-zero default applies;
// otherwise there is no ceiling and ok is false.
func ResolveMaxWidth(param *uint32, fallback uint32) (ceiling uint32, ok bool) {
	if param != nil {
		return *param, true
	}
	if fallback > 0 {
		return fallback, true
	}
	return 0, false
}
