package config

// Source exposes the scheduling configuration for live reads. The scheduler
// consults it at the top of every cycle so enable/interval changes take
// effect without a restart.
type Source interface {
	Parsing() ParsingConfig
}

// ViperSource reads the parsing block from a live viper instance. Combined
// with viper's WatchConfig, edits to the config file show up on the next
// scheduler cycle.
type ViperSource struct {
	v viperReader
}

type viperReader interface {
	GetBool(key string) bool
	GetInt(key string) int
}

// NewViperSource wraps a viper instance as a Source.
func NewViperSource(v viperReader) *ViperSource {
	return &ViperSource{v: v}
}

// Parsing returns the current parsing configuration.
func (s *ViperSource) Parsing() ParsingConfig {
	return ParsingConfig{
		Enabled:         s.v.GetBool("parsing.enabled"),
		IntervalMinutes: s.v.GetInt("parsing.interval_minutes"),
	}
}

// StaticSource returns fixed parsing settings; useful for tests and one-shot
// commands.
type StaticSource struct {
	Config ParsingConfig
}

// Parsing returns the fixed settings.
func (s StaticSource) Parsing() ParsingConfig {
	return s.Config
}
