package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// declared base configuration, one document with all search contexts
type configFile struct {
	Contexts map[string]*ContainerConfig `yaml:"contexts"`
}

func Load(data []byte) (map[string]*ContainerConfig, error) {
	f := &configFile{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to parse base config: %w", err)
	}

	for name, cfg := range f.Contexts {
		cfg.Name = name
		cfg.normalize()
	}
	return f.Contexts, nil
}

func LoadFile(path string) (map[string]*ContainerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read base config: %w", err)
	}
	return Load(data)
}

// FileSource serves declared base configs from a YAML file.
type FileSource struct {
	contexts map[string]*ContainerConfig
}

func NewFileSource(path string) (*FileSource, error) {
	contexts, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &FileSource{contexts: contexts}, nil
}

func (s *FileSource) GetBaseConfig(contextName string) (*ContainerConfig, error) {
	cfg, ok := s.contexts[contextName]
	if !ok {
		return nil, fmt.Errorf("unknown search context: %s", contextName)
	}
	return cfg, nil
}
