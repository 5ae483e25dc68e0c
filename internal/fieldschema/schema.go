// Package fieldschema maps cost centers to the extra fields an expense of that
// category carries, and renders the stored values for reports.
package fieldschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
)

const isoDate = "2006-01-02"

// FieldDefinition describes one input of a cost center's detail form.
type FieldDefinition struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Placeholder string    `json:"placeholder"`
}

const (
	SchemaVehicle  = "vehicle"
	SchemaSupplier = "supplier"
	SchemaPayroll  = "payroll"
	SchemaTax      = "tax"
	SchemaGeneral  = "general"
)

var ErrInvalidDetails = errors.New("invalid expense details")

var schemas = map[string][]FieldDefinition{
	SchemaVehicle: {
		{Name: "municipioUf", Label: "Município/UF", Type: FieldText, Placeholder: "Chapecó/SC"},
		{Name: "placaVeiculo", Label: "Placa do Veículo", Type: FieldText, Placeholder: "ABC-1234"},
		{Name: "kmVeiculo", Label: "KM do Veículo", Type: FieldNumber, Placeholder: "125000"},
		{Name: "funcionario", Label: "Funcionário", Type: FieldText, Placeholder: "Nome do funcionário"},
	},
	SchemaSupplier: {
		{Name: "fornecedor", Label: "Fornecedor", Type: FieldText, Placeholder: "Razão social"},
		{Name: "cnpjFornecedor", Label: "CNPJ do Fornecedor", Type: FieldText, Placeholder: "00.000.000/0000-00"},
		{Name: "numeroNotaFiscal", Label: "Nº da Nota Fiscal", Type: FieldText, Placeholder: "000123"},
		{Name: "dataEmissao", Label: "Data de Emissão", Type: FieldDate, Placeholder: "AAAA-MM-DD"},
	},
	SchemaPayroll: {
		{Name: "funcionario", Label: "Funcionário", Type: FieldText, Placeholder: "Nome do funcionário"},
		{Name: "cpf", Label: "CPF", Type: FieldText, Placeholder: "000.000.000-00"},
		{Name: "competencia", Label: "Competência", Type: FieldText, Placeholder: "MM/AAAA"},
		{Name: "diasTrabalhados", Label: "Dias Trabalhados", Type: FieldNumber, Placeholder: "22"},
	},
	SchemaTax: {
		{Name: "competencia", Label: "Competência", Type: FieldText, Placeholder: "MM/AAAA"},
		{Name: "codigoReceita", Label: "Código da Receita", Type: FieldText, Placeholder: "2100"},
		{Name: "numeroGuia", Label: "Nº da Guia", Type: FieldText, Placeholder: "Número do documento"},
		{Name: "dataVencimento", Label: "Data de Vencimento", Type: FieldDate, Placeholder: "AAAA-MM-DD"},
	},
	SchemaGeneral: {
		{Name: "responsavel", Label: "Responsável", Type: FieldText, Placeholder: "Quem autorizou"},
		{Name: "documento", Label: "Documento", Type: FieldText, Placeholder: "Recibo, boleto, fatura"},
	},
}

// costCenterSchemas maps a cost center code to its schema. Several codes share one schema.
var costCenterSchemas = map[string]string{
	"combustivel":            SchemaVehicle,
	"manutencao-de-veiculos": SchemaVehicle,
	"pedagio":                SchemaVehicle,

	"materiais-de-construcao":    SchemaSupplier,
	"ferramentas-e-equipamentos": SchemaSupplier,
	"locacao-de-equipamentos":    SchemaSupplier,
	"servicos-terceirizados":     SchemaSupplier,
	"epi":                        SchemaSupplier,

	"salarios":        SchemaPayroll,
	"ferias":          SchemaPayroll,
	"decimo-terceiro": SchemaPayroll,
	"rescisoes":       SchemaPayroll,

	"inss":              SchemaTax,
	"fgts":              SchemaTax,
	"iss":               SchemaTax,
	"impostos-federais": SchemaTax,

	"despesas-administrativas": SchemaGeneral,
	"aluguel":                  SchemaGeneral,
	"energia-e-agua":           SchemaGeneral,
	"telefonia-e-internet":     SchemaGeneral,
	"hospedagem":               SchemaGeneral,
	"alimentacao":              SchemaGeneral,
	"outros":                   SchemaGeneral,
}

// SchemaFor returns the schema name bound to a cost center code.
func SchemaFor(code string) (string, bool) {
	name, ok := costCenterSchemas[strings.TrimSpace(code)]
	return name, ok
}

// FieldsFor returns a copy of the ordered field list for a cost center code.
// Unknown codes have no extra fields.
func FieldsFor(code string) []FieldDefinition {
	name, ok := SchemaFor(code)
	if !ok {
		return []FieldDefinition{}
	}
	fields := schemas[name]
	out := make([]FieldDefinition, len(fields))
	copy(out, fields)
	return out
}

// Codes lists every cost center code that has a schema, sorted.
func Codes() []string {
	codes := make([]string, 0, len(costCenterSchemas))
	for code := range costCenterSchemas {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Members lists the codes bound to a schema, sorted.
func Members(schema string) []string {
	var codes []string
	for code, name := range costCenterSchemas {
		if name == schema {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// FormatDetails renders "label: value" pairs in schema order, skipping empty values.
func FormatDetails(code string, details map[string]string) string {
	if len(details) == 0 {
		return ""
	}
	parts := make([]string, 0, len(details))
	for _, f := range FieldsFor(code) {
		value := strings.TrimSpace(details[f.Name])
		if value == "" {
			continue
		}
		if f.Type == FieldDate {
			if t, err := time.Parse(isoDate, value); err == nil {
				value = t.Format("02/01/2006")
			}
		}
		parts = append(parts, f.Label+": "+value)
	}
	return strings.Join(parts, ", ")
}

// ValidateDetails checks a submitted details map against the cost center's schema
// and returns the non-empty, trimmed values.
func ValidateDetails(code string, details map[string]string) (map[string]string, error) {
	fields := FieldsFor(code)
	byName := make(map[string]FieldDefinition, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	clean := make(map[string]string, len(details))
	for key, raw := range details {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		f, ok := byName[key]
		if !ok {
			return nil, fmt.Errorf("%w: field %q is not defined for this cost center", ErrInvalidDetails, key)
		}
		switch f.Type {
		case FieldNumber:
			if _, err := decimal.NewFromString(strings.Replace(value, ",", ".", 1)); err != nil {
				return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidDetails, f.Label)
			}
		case FieldDate:
			if _, err := time.Parse(isoDate, value); err != nil {
				return nil, fmt.Errorf("%w: %s must be a date (YYYY-MM-DD)", ErrInvalidDetails, f.Label)
			}
		}
		clean[key] = value
	}
	return clean, nil
}

// EncodeDetails serializes a details map; an empty map encodes to "".
func EncodeDetails(details map[string]string) (string, error) {
	if len(details) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ParseDetails reads a stored payload. Anything that is not a JSON object yields ok=false.
// Non-string values are kept in their JSON text form.
func ParseDetails(raw string) (map[string]string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, false
	}
	out := make(map[string]string, len(values))
	for key, v := range values {
		if strings.TrimSpace(string(v)) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[key] = s
			continue
		}
		out[key] = string(v)
	}
	return out, true
}
