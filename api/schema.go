package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	candidateSchema = mustSchema("schemas/candidate.json")
	jobSchema       = mustSchema("schemas/job.json")
)

func mustSchema(name string) *jsonschema.Schema {
	b, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", name, err))
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(b, rs); err != nil {
		panic(fmt.Sprintf("parse schema %s: %v", name, err))
	}
	return rs
}

// validateBody checks body against rs and returns the joined schema messages
// when it does not conform.
func validateBody(ctx context.Context, rs *jsonschema.Schema, body []byte) error {
	if !json.Valid(body) {
		return fmt.Errorf("invalid json")
	}
	keyErrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return err
	}
	if len(keyErrs) == 0 {
		return nil
	}

	msgs := make([]string, 0, len(keyErrs))
	for _, ke := range keyErrs {
		msgs = append(msgs, ke.Error())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
