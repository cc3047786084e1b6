package sankhya

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/eletrohub/backend/internal/domain"
)

// macroCategories maps the ERP macro-category codes to display names.
var macroCategories = map[string]string{
	"AB": "Acabamento",
	"AC": "Acessórios",
	"AT": "Automação",
	"CD": "Cabos Diversos",
	"CE": "Cabos Energia",
	"CI": "Combate a Incêndio",
	"EQ": "Equipamentos",
	"FE": "Ferragens",
	"FR": "Ferramentas",
	"HD": "Hidraulico",
	"IC": "Iluminação Comercial",
	"ID": "Iluminação Decorativa",
	"IN": "Infraestrutura",
	"MT": "Média Tensão",
	"SP": "SPDA",
}

// MapProduct converts one raw gateway row into a ProductRecord. The
// gateway returns either an array of values in SELECT order or a keyed
// object, depending on the endpoint version.
func MapProduct(raw json.RawMessage) (domain.ProductRecord, error) {
	var (
		codprod, descrprod, marca, marcaControle, codvol any
		ativo, estoque, preco, categoria, popularidade   any
	)

	var asArray []any
	if err := json.Unmarshal(raw, &asArray); err == nil {
		if len(asArray) < 10 {
			return domain.ProductRecord{}, fmt.Errorf("product row has %d columns, want 10", len(asArray))
		}
		codprod, descrprod, marca, marcaControle, codvol = asArray[0], asArray[1], asArray[2], asArray[3], asArray[4]
		ativo, estoque, preco, categoria, popularidade = asArray[5], asArray[6], asArray[7], asArray[8], asArray[9]
	} else {
		var asObject map[string]any
		if err := json.Unmarshal(raw, &asObject); err != nil {
			return domain.ProductRecord{}, fmt.Errorf("unrecognized product row: %w", err)
		}
		codprod = asObject["CODPROD"]
		descrprod = asObject["DESCRPROD"]
		marca = asObject["MARCA"]
		marcaControle = asObject["MARCA_CONTROLE"]
		codvol = asObject["CODVOL"]
		ativo = asObject["ATIVO"]
		estoque = asObject["ESTOQUE"]
		preco = asObject["PRECO_CONSUMIDOR"]
		categoria = asObject["CATEGORIA_MACRO"]
		popularidade = asObject["INDICE_POPULARIDADE"]
	}

	sankhyaCode, err := toInt64(codprod)
	if err != nil {
		return domain.ProductRecord{}, fmt.Errorf("invalid CODPROD %v: %w", codprod, err)
	}

	name := strings.TrimSpace(toString(descrprod))
	if name == "" {
		name = "Produto sem nome"
	}

	brand := strings.TrimSpace(toString(marcaControle))
	if brand == "" {
		brand = strings.TrimSpace(toString(marca))
	}

	unit := strings.TrimSpace(toString(codvol))
	if unit == "" {
		unit = "UN"
	}

	p := domain.ProductRecord{
		ID:              fmt.Sprintf("sankhya-%d", sankhyaCode),
		Name:            name,
		Brand:           brand,
		Category:        mapCategory(toString(categoria), name),
		SankhyaCode:     &sankhyaCode,
		Price:           toFloat(preco),
		Unit:            unit,
		IsAvailable:     strings.EqualFold(toString(ativo), "S") && toFloat(estoque) > 0,
		PopularityIndex: toFloat(popularidade),
	}
	return p, nil
}

// MapProducts converts a batch, skipping rows that cannot be parsed.
func MapProducts(rows []json.RawMessage) []domain.ProductRecord {
	out := make([]domain.ProductRecord, 0, len(rows))
	for _, row := range rows {
		p, err := MapProduct(row)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

func mapCategory(code, name string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code != "" {
		if mapped, ok := macroCategories[code]; ok {
			return mapped
		}
		return code
	}
	return inferCategory(name)
}

// inferCategory is the fallback for rows without a macro code.
func inferCategory(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "disjuntor") || strings.Contains(lower, "dr"):
		return "Elétrica"
	case strings.Contains(lower, "fio") || strings.Contains(lower, "cabo"):
		return "Fios e Cabos"
	case strings.Contains(lower, "tomada") || strings.Contains(lower, "interruptor"):
		return "Acabamento"
	case strings.Contains(lower, "lampada") || strings.Contains(lower, "led"):
		return "Iluminação"
	case strings.Contains(lower, "condulete") || strings.Contains(lower, "caixa"):
		return "Infraestrutura"
	default:
		return "Geral"
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f
	default:
		return 0
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
