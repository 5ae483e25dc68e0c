package fieldschema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasedCostCentersShareFields(t *testing.T) {
	for _, schema := range []string{SchemaVehicle, SchemaSupplier, SchemaPayroll, SchemaTax, SchemaGeneral} {
		members := Members(schema)
		require.NotEmpty(t, members, schema)

		want := FieldsFor(members[0])
		for _, code := range members[1:] {
			assert.Equal(t, want, FieldsFor(code), "%s should match %s", code, members[0])
		}
	}
}

func TestFieldsFor(t *testing.T) {
	t.Run("vehicle order", func(t *testing.T) {
		fields := FieldsFor("combustivel")
		names := make([]string, 0, len(fields))
		for _, f := range fields {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"municipioUf", "placaVeiculo", "kmVeiculo", "funcionario"}, names)
		assert.Equal(t, FieldNumber, fields[2].Type)
	})

	t.Run("unknown code is empty, not nil", func(t *testing.T) {
		fields := FieldsFor("does-not-exist")
		assert.NotNil(t, fields)
		assert.Empty(t, fields)
	})

	t.Run("result is a copy", func(t *testing.T) {
		fields := FieldsFor("combustivel")
		fields[0].Label = "changed"
		assert.Equal(t, "Município/UF", FieldsFor("combustivel")[0].Label)
	})
}

func TestFormatDetails(t *testing.T) {
	t.Run("schema order and empty values omitted", func(t *testing.T) {
		got := FormatDetails("combustivel", map[string]string{
			"placaVeiculo": "ABC-1234",
			"municipioUf":  "Chapecó/SC",
			"funcionario":  "  ",
		})
		assert.Equal(t, "Município/UF: Chapecó/SC, Placa do Veículo: ABC-1234", got)
	})

	t.Run("dates rendered day first", func(t *testing.T) {
		got := FormatDetails("materiais-de-construcao", map[string]string{
			"fornecedor":  "Casa do Construtor",
			"dataEmissao": "2025-03-07",
		})
		assert.Equal(t, "Fornecedor: Casa do Construtor, Data de Emissão: 07/03/2025", got)
	})

	t.Run("keys outside the schema are ignored", func(t *testing.T) {
		assert.Equal(t, "", FormatDetails("aluguel", map[string]string{"placaVeiculo": "X"}))
		assert.Equal(t, "", FormatDetails("combustivel", nil))
	})
}

func TestValidateDetails(t *testing.T) {
	t.Run("drops empty values", func(t *testing.T) {
		clean, err := ValidateDetails("combustivel", map[string]string{"placaVeiculo": " ABC-1234 ", "kmVeiculo": ""})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"placaVeiculo": "ABC-1234"}, clean)
	})

	t.Run("rejects unknown key", func(t *testing.T) {
		_, err := ValidateDetails("combustivel", map[string]string{"cpf": "123"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidDetails))
	})

	t.Run("rejects non numeric km", func(t *testing.T) {
		_, err := ValidateDetails("combustivel", map[string]string{"kmVeiculo": "muito"})
		require.ErrorIs(t, err, ErrInvalidDetails)
	})

	t.Run("accepts decimal comma", func(t *testing.T) {
		_, err := ValidateDetails("combustivel", map[string]string{"kmVeiculo": "1520,5"})
		require.NoError(t, err)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		_, err := ValidateDetails("inss", map[string]string{"dataVencimento": "20/03/2025"})
		require.ErrorIs(t, err, ErrInvalidDetails)
	})
}

func TestEncodeAndParseDetails(t *testing.T) {
	raw, err := EncodeDetails(map[string]string{"placaVeiculo": "ABC-1234"})
	require.NoError(t, err)

	parsed, ok := ParseDetails(raw)
	require.True(t, ok)
	assert.Equal(t, "ABC-1234", parsed["placaVeiculo"])

	empty, err := EncodeDetails(nil)
	require.NoError(t, err)
	assert.Equal(t, "", empty)

	_, ok = ParseDetails("{not json")
	assert.False(t, ok)
	_, ok = ParseDetails("")
	assert.False(t, ok)

	parsed, ok = ParseDetails(`{"kmVeiculo": 1520, "funcionario": null}`)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"kmVeiculo": "1520"}, parsed)
}

func TestParseDetailsDropsNullValues(t *testing.T) {
	parsed, ok := ParseDetails(`{"placaVeiculo": null, "fornecedor": "Posto Central", "litros": 40.5}`)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"fornecedor": "Posto Central", "litros": "40.5"}, parsed)
	_, present := parsed["placaVeiculo"]
	assert.False(t, present)

	parsed, ok = ParseDetails(`{"funcionario": null}`)
	require.True(t, ok)
	assert.Empty(t, parsed)
}

func TestSchemaFor(t *testing.T) {
	name, ok := SchemaFor("combustivel")
	require.True(t, ok)
	assert.Equal(t, SchemaVehicle, name)

	name, ok = SchemaFor(" outros ")
	require.True(t, ok)
	assert.Equal(t, SchemaGeneral, name)

	name, ok = SchemaFor("nao-existe")
	assert.False(t, ok)
	assert.Empty(t, name)
}
