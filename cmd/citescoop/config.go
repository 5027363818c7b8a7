package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/WikiOpenCite/citescoop"
)

// A config is the optional YAML configuration for an extraction run.
type config struct {
	// Templates lists the citation template names to keep.  Empty
	// means keep everything.
	Templates []string `yaml:"templates"`
	// IgnoreInvalidIdent drops unparseable numeric identifiers
	// instead of aborting.
	IgnoreInvalidIdent bool `yaml:"ignore_invalid_ident"`
	// Language is recorded in the output file headers.
	Language string `yaml:"language"`
}

func loadConfig(path string) (*config, error) {
	cfg := &config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	return cfg, nil
}

// filter builds the template name filter, or nil for accept-all.
func (c *config) filter() citescoop.NameFilter {
	if len(c.Templates) == 0 {
		return nil
	}
	accept := map[string]bool{}
	for _, name := range c.Templates {
		accept[name] = true
	}
	return func(name string) bool {
		return accept[name]
	}
}

func (c *config) parser() *citescoop.Parser {
	return citescoop.NewParser(c.filter(), citescoop.ParserOptions{
		IgnoreInvalidIdent: c.IgnoreInvalidIdent,
	})
}
