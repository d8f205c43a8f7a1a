package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planactions/customfields/internal/core/domain"
	"github.com/planactions/customfields/internal/core/validation"
)

func newValidateCmd() *cobra.Command {
	var schemaPath, valuesPath, field string

	cmd := &cobra.Command{
		Use:   "validate --schema FILE --values FILE [--field KEY]",
		Short: "Validate a value map against a schema without a server",
		Long: `Validate a value map against a schema without a server.

The schema file holds either a list of field definitions or an object with a
"fields" list (the output of "fieldctl schema"). The values file is a JSON
object keyed by field key. The result is printed as JSON; the exit status is
1 when any value is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := readSchema(schemaPath)
			if err != nil {
				return err
			}
			var values domain.ValueMap
			if err := readJSON(valuesPath, &values); err != nil {
				return err
			}

			res, err := validateValues(schema, values, field)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd, res); err != nil {
				return err
			}
			if !res.IsValid {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema JSON file")
	cmd.Flags().StringVar(&valuesPath, "values", "", "values JSON file")
	cmd.Flags().StringVar(&field, "field", "", "validate only this field")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("values")
	return cmd
}

func validateValues(schema domain.Schema, values domain.ValueMap, field string) (validation.Result, error) {
	if field == "" {
		return validation.ValidateAll(schema.Active(), values), nil
	}
	def, ok := schema.Lookup(field)
	if !ok || !def.Active {
		return validation.Result{}, fmt.Errorf("field %q is not an active field of the schema", field)
	}
	res := validation.Result{Errors: map[string]string{}, IsValid: true}
	if msg, ok := validation.ValidateField(def, values[field]); !ok {
		res.Errors[field] = msg
		res.IsValid = false
	}
	return res, nil
}

func readSchema(path string) (domain.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Schema{}, fmt.Errorf("reading schema: %w", err)
	}
	var defs []domain.FieldDefinition
	if err := json.Unmarshal(data, &defs); err == nil {
		return domain.Schema{Fields: defs}, nil
	}
	var schema domain.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return domain.Schema{}, fmt.Errorf("parsing schema %s: %w", path, err)
	}
	return schema, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
