package jsondom_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relex/jsondom"
)

// compileOracle compiles the same schema document text with the
// third-party Draft 2020-12 validator, used here purely as an independent
// cross-check on our own compiler/validator below.
func compileOracle(t *testing.T, schemaJSON string) *jsonschema.Schema {
	t.Helper()
	compiler := jsonschema.NewCompiler()
	require.NoError(t, compiler.AddResource("schema.json", strings.NewReader(schemaJSON)))
	sch, err := compiler.Compile("schema.json")
	require.NoError(t, err)
	return sch
}

func TestSchemaRequiredPropertyMissing(t *testing.T) {
	t.Parallel()

	schemaDoc, err := jsondom.Parse([]byte(`{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}}
	}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer schemaDoc.Free()

	compiled, err := jsondom.Compile(schemaDoc)
	require.NoError(t, err)

	inst, err := jsondom.Parse([]byte(`{"age":1}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer inst.Free()

	err = compiled.Validate(inst)
	assert.ErrorIs(t, err, jsondom.ErrSchema)
}

func TestSchemaTypeMismatch(t *testing.T) {
	t.Parallel()

	schemaDoc, err := jsondom.Parse([]byte(`{"type": "string"}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer schemaDoc.Free()

	compiled, err := jsondom.Compile(schemaDoc)
	require.NoError(t, err)

	inst, err := jsondom.Parse([]byte(`42`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer inst.Free()

	assert.ErrorIs(t, compiled.Validate(inst), jsondom.ErrSchema)
}

func TestSchemaConstMatchSucceedsWithoutFurtherChecks(t *testing.T) {
	t.Parallel()

	schemaDoc, err := jsondom.Parse([]byte(`{"const": 5, "type": "string"}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer schemaDoc.Free()

	compiled, err := jsondom.Compile(schemaDoc)
	require.NoError(t, err)

	inst, err := jsondom.Parse([]byte(`5`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer inst.Free()

	// const matches, despite the type mismatch that would otherwise fail
	// (spec §4.5 step 1: "on match, succeed without further checks").
	assert.NoError(t, compiled.Validate(inst))
}

func TestSchemaEnumNoMatch(t *testing.T) {
	t.Parallel()

	schemaDoc, err := jsondom.Parse([]byte(`{"enum": [1, 2, 3]}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer schemaDoc.Free()

	compiled, err := jsondom.Compile(schemaDoc)
	require.NoError(t, err)

	inst, err := jsondom.Parse([]byte(`4`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer inst.Free()

	assert.ErrorIs(t, compiled.Validate(inst), jsondom.ErrSchema)
}

func TestSchemaNumericBounds(t *testing.T) {
	t.Parallel()

	schemaDoc, err := jsondom.Parse([]byte(`{"type": "number", "minimum": 0, "maximum": 10}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer schemaDoc.Free()

	compiled, err := jsondom.Compile(schemaDoc)
	require.NoError(t, err)

	within, err := jsondom.Parse([]byte(`5`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer within.Free()
	assert.NoError(t, compiled.Validate(within))

	tooHigh, err := jsondom.Parse([]byte(`11`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer tooHigh.Free()
	assert.ErrorIs(t, compiled.Validate(tooHigh), jsondom.ErrSchema)
}

func TestSchemaArrayItemsRecursiveValidation(t *testing.T) {
	t.Parallel()

	schemaDoc, err := jsondom.Parse([]byte(`{
		"type": "array",
		"items": {"type": "number", "minimum": 0}
	}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer schemaDoc.Free()

	compiled, err := jsondom.Compile(schemaDoc)
	require.NoError(t, err)

	inst, err := jsondom.Parse([]byte(`[1, 2, -3]`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer inst.Free()

	assert.ErrorIs(t, compiled.Validate(inst), jsondom.ErrSchema)
}

func TestSchemaPropertiesNotNamedAreIgnored(t *testing.T) {
	t.Parallel()

	schemaDoc, err := jsondom.Parse([]byte(`{
		"type": "object",
		"properties": {"a": {"type": "number"}}
	}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer schemaDoc.Free()

	compiled, err := jsondom.Compile(schemaDoc)
	require.NoError(t, err)

	inst, err := jsondom.Parse([]byte(`{"a":1,"b":"unrestricted"}`), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer inst.Free()

	assert.NoError(t, compiled.Validate(inst))
}

// TestSchemaAgreesWithThirdPartyValidator cross-checks a handful of
// instances against both our own validator and the imported Draft 2020-12
// oracle, as a sanity net on the subset we implement ourselves.
func TestSchemaAgreesWithThirdPartyValidator(t *testing.T) {
	t.Parallel()

	const schemaJSON = `{
		"type": "object",
		"required": ["id"],
		"properties": {
			"id": {"type": "number", "minimum": 1},
			"tags": {"type": "array", "items": {"type": "string"}}
		}
	}`

	oracle := compileOracle(t, schemaJSON)

	schemaDoc, err := jsondom.Parse([]byte(schemaJSON), jsondom.DefaultParseOptions())
	require.NoError(t, err)
	defer schemaDoc.Free()
	compiled, err := jsondom.Compile(schemaDoc)
	require.NoError(t, err)

	cases := map[string]struct {
		instance string
		wantOK   bool
	}{
		"valid":             {`{"id": 1, "tags": ["a", "b"]}`, true},
		"missing required":  {`{"tags": []}`, false},
		"id below minimum":  {`{"id": 0}`, false},
		"tag wrong type":    {`{"id": 2, "tags": [1]}`, false},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			inst, err := jsondom.Parse([]byte(tc.instance), jsondom.DefaultParseOptions())
			require.NoError(t, err)
			defer inst.Free()

			ourErr := compiled.Validate(inst)
			ourOK := ourErr == nil

			var decoded any
			require.NoError(t, json.Unmarshal([]byte(tc.instance), &decoded))
			oracleOK := oracle.Validate(decoded) == nil

			assert.Equal(t, tc.wantOK, ourOK, "our validator")
			assert.Equal(t, oracleOK, ourOK, "disagreement with oracle validator")
		})
	}
}
