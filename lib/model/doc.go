// Package model provides the model registry of the record store: the static
// mapping between a singular type name and its definition (accepted attributes,
// to-one and to-many relationships).
//
// Models are declared explicitly, either in code
//
//	article := model.New("article",
//	    model.WithAttributes("title"),
//	    model.WithBelongsTo("author", "person"),
//	    model.WithHasMany("comments", "comment"),
//	)
//	registry, err := model.NewRegistry(article, model.New("person"), model.New("comment"))
//
// or in a YAML schema file loaded with LoadRegistry / LoadRegistryFile.
//
// The registry is immutable after NewRegistry returned. Lookups of unknown type
// names or unregistered models fail with an error matching ErrUnknownModel.
// Resolve additionally accepts the plural spelling used by most JSON:API services.
package model
