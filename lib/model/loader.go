package model

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"io"
	"os"
)

// definitionFile is the YAML layout of a schema file:
//
//	models:
//	  - name: article
//	    attributes: [title]
//	    belongsTo: {author: person}
//	    hasMany: {comments: comment}
type definitionFile struct {
	Models []definition `yaml:"models"`
}

type definition struct {
	Name       string            `yaml:"name"`
	Attributes []string          `yaml:"attributes,omitempty"`
	HasMany    map[string]string `yaml:"hasMany,omitempty"`
	BelongsTo  map[string]string `yaml:"belongsTo,omitempty"`
}

// LoadDefinitions parses model definitions from a YAML schema.
func LoadDefinitions(r io.Reader) ([]*Model, error) {
	var file definitionFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parse model definitions: %w", err)
	}

	models := make([]*Model, 0, len(file.Models))
	for _, def := range file.Models {
		opts := make([]Option, 0, 1+len(def.HasMany)+len(def.BelongsTo))
		if def.Attributes != nil {
			opts = append(opts, WithAttributes(def.Attributes...))
		}
		for name, target := range def.HasMany {
			opts = append(opts, WithHasMany(name, target))
		}
		for name, target := range def.BelongsTo {
			opts = append(opts, WithBelongsTo(name, target))
		}
		models = append(models, New(def.Name, opts...))
	}
	return models, nil
}

// LoadRegistry parses a YAML schema and registers all models in it.
func LoadRegistry(r io.Reader) (*Registry, error) {
	models, err := LoadDefinitions(r)
	if err != nil {
		return nil, err
	}
	return NewRegistry(models...)
}

// LoadRegistryFile is LoadRegistry for a schema file on disk.
func LoadRegistryFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadRegistry(f)
}
