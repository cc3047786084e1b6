package search

import "sort"

// rawSynonyms declares canonical terms and their abbreviations/equivalents.
// All entries upper-case by convention. One abbreviation may be declared by
// several canonical terms (e.g. QUAD); the expander unions them all.
var rawSynonyms = map[string][]string{
	// Iluminacao
	"PAINEL":    {"LUMINARIA", "PLAFON", "LED", "LUM", "LUMIN"},
	"LUMINARIA": {"PAINEL", "PLAFON", "LED", "LUM", "LUMIN"},
	"PLAFON":    {"PAINEL", "LUMINARIA", "LED"},
	"LED":       {"LUMINARIA", "PAINEL", "REFLETOR"},
	"ARANDELA":  {"ARAND"},
	"REFLETOR":  {"REF"},
	"LAMPADA":   {"LAMP"},

	// Fios e cabos
	"FIO":  {"CABO", "CONDUTOR", "CB", "CAB"},
	"CABO": {"FIO", "CONDUTOR", "CB", "CAB"},

	// Infraestrutura
	"ELETRODUTO": {"CONDUITE", "TUBO", "ELET"},
	"CONDUITE":   {"ELETRODUTO", "TUBO", "MANGUEIRA", "MANGUEIRA CORRUGADA", "ELETRODUTO CORRUGADO"},
	"CONDULETE":  {"CAIXA MULTIPLA", "CX MULTIPLA"},
	"CAIXA":      {"CX", "CX.", "CXA"},
	"QUADRO":     {"QD", "QD.", "QDR", "QUAD"},
	"QUADRADA":   {"QUAD", "QD", "QDR"},
	"QUADRADO":   {"QUAD", "QD", "QDR"},

	// Dispositivos e modulos
	"DISJUNTOR":   {"MINI DISJUNTOR", "DPS", "DR", "DISJ", "DISJ.", "DISJUN", "BREAKER"},
	"TOMADA":      {"CONJUNTO", "PLACA", "TOM", "TOM."},
	"INTERRUPTOR": {"CONJUNTO", "TECLA", "INT", "INT.", "INTER"},
	"MODULO":      {"MOD", "MOD.", "MÓDULO"},
	"PLACA":       {"PL", "PL.", "ESPELHO"},
	"DR":          {"DIFERENCIAL", "RESIDUAL"},

	// Instalacao
	"EMBUTIR":      {"EMB", "EMB."},
	"SOBREPOR":     {"SOB", "SOB.", "EXTERNO"},
	"ABRACADEIRA":  {"ABRAC"},
	"DISTRIBUICAO": {"DIST"},
	"ISOLANTE":     {"ISOL"},

	// Materiais
	"ALUMINIO":    {"ALUM"},
	"GALVANIZADO": {"GALV"},
	"ZINCADO":     {"ZINC"},
	"FLEXIVEL":    {"FLEX"},

	// Fases
	"MONOFASICO": {"MONOPOLAR", "MONO"},
	"MONOPOLAR":  {"MONOFASICO", "MONO"},
	"BIFASICO":   {"BIPOLAR"},
	"BIPOLAR":    {"BIFASICO"},
	"TRIFASICO":  {"TRIPOLAR"},
	"TRIPOLAR":   {"TRIFASICO"},

	// Cores
	"BRANCO":   {"BC"},
	"PRETO":    {"PT"},
	"VERMELHO": {"VM"},
	"VERDE":    {"VD"},
	"AMARELO":  {"AM"},
	"AZUL":     {"AZ"},
	"CINZA":    {"CZ"},

	// Unidades e medidas
	"PC": {"PECA"},
	"MT": {"METRO"},
	"MM": {"MILIMETRO"},

	// Buchas / fixacao
	"TIJOLO": {"TIJ"},
	"FURADO": {"FUR"},
}

// Table is the bidirectional abbreviation/synonym lookup. Built once at
// process start and never mutated afterwards.
type Table struct {
	forward map[string][]string
	reverse map[string][]string
	// canonical keys sorted for the prefix scan in Expand
	keys []string
}

// NewTable builds the lookup from the static declarations. An optional
// overlay (approved synonyms loaded from the store at startup) is merged on
// top, replacing the declared list for any term it names.
func NewTable(overlay map[string][]string) *Table {
	merged := make(map[string][]string, len(rawSynonyms)+len(overlay))
	for term, abbrs := range rawSynonyms {
		merged[upper(term)] = upperAll(abbrs)
	}
	for term, abbrs := range overlay {
		merged[upper(term)] = upperAll(abbrs)
	}

	t := &Table{
		forward: merged,
		reverse: make(map[string][]string),
		keys:    make([]string, 0, len(merged)),
	}
	for term, abbrs := range merged {
		t.keys = append(t.keys, term)
		for _, abbr := range abbrs {
			t.reverse[abbr] = append(t.reverse[abbr], term)
		}
	}
	sort.Strings(t.keys)
	for abbr := range t.reverse {
		sort.Strings(t.reverse[abbr])
	}
	return t
}

// Forward returns the abbreviations declared for a canonical term, or nil.
func (t *Table) Forward(term string) []string {
	return t.forward[upper(term)]
}

// Reverse returns every canonical term declaring the given abbreviation.
// More than one entry is normal (QUAD maps to QUADRO, QUADRADA and
// QUADRADO); the ambiguity is absorbed by the variant-OR semantics.
func (t *Table) Reverse(abbr string) []string {
	return t.reverse[upper(abbr)]
}
