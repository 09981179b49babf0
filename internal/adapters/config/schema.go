package config

// SettingsFile represents the structure of the .fake.yaml settings file.
type SettingsFile struct {
	Makefile    string            `yaml:"makefile"`
	Make        string            `yaml:"make"`
	GraphSource string            `yaml:"graph_source"`
	OutputMode  string            `yaml:"output_mode"`
	Jobs        int               `yaml:"jobs"`
	LogJSON     bool              `yaml:"log_json"`
	Variables   map[string]string `yaml:"variables"`
}
