package vendas

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venda represents a prepaid-wallet resale transaction.
// DesagioPercentual and Lucro are computed by the storage layer on every
// insert and update; values sent by clients are never persisted.
type Venda struct {
	ID                string    `json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	DataVenda         string    `json:"data_venda"`
	Cliente           string    `json:"cliente"`
	Situacao          string    `json:"situacao"`
	Localizador       string    `json:"localizador"`
	Origem            string    `json:"origem"`
	Titular           string    `json:"titular"`
	ValorWallet       float64   `json:"valor_wallet"`
	CustoWallet       float64   `json:"custo_wallet"`
	ValorVenda        float64   `json:"valor_venda"`
	Emissor           string    `json:"emissor"`
	Financeiro        string    `json:"financeiro"`
	DesagioPercentual float64   `json:"desagio_percentual"`
	Lucro             float64   `json:"lucro"`
}

// VendaInput carries the client-supplied fields of a venda. It is used both
// for creation and for full-record replacement on update.
type VendaInput struct {
	DataVenda   string
	Cliente     string
	Situacao    string
	Localizador string
	Origem      string
	Titular     string
	ValorWallet float64
	CustoWallet float64
	ValorVenda  float64
	Emissor     string
	Financeiro  string
}

// Filtros is an optional conjunction of list constraints. An empty field
// means no constraint. Dates are YYYY-MM-DD strings, inclusive on both ends.
type Filtros struct {
	Situacao   string
	Titular    string
	Emissor    string
	DataInicio string
	DataFim    string
}

// Indicadores is the dashboard aggregate over the whole table.
type Indicadores struct {
	TotalRegistros int64   `json:"total_registros"`
	TotalVendas    float64 `json:"total_vendas"`
	TotalLucro     float64 `json:"total_lucro"`
	DesagioMedio   float64 `json:"desagio_medio"`
}

// SaldoTitular is the cumulative profit of one wallet-credit holder.
type SaldoTitular struct {
	Titular    string  `json:"titular"`
	SaldoLucro float64 `json:"saldo_lucro"`
}

// camposOpcoes maps a filter field name accepted by the distinct-values
// lookup to its storage column. Anything outside this set is rejected.
var camposOpcoes = map[string]string{
	"titular":    "titular",
	"emissor":    "emissor",
	"situacao":   "situacao",
	"financeiro": "financeiro",
}

// CampoValido reports whether campo is accepted by the distinct-values lookup.
func CampoValido(campo string) bool {
	_, ok := camposOpcoes[campo]
	return ok
}

// calcularDerivados computes desagio_percentual and lucro rounded to two
// decimal places. Callers must not persist client-supplied values for these.
func calcularDerivados(valorWallet, custoWallet, valorVenda float64) (desagio, lucro float64) {
	vw := decimal.NewFromFloat(valorWallet)
	cw := decimal.NewFromFloat(custoWallet)

	lucro = decimal.NewFromFloat(valorVenda).Sub(cw).Round(2).InexactFloat64()
	if vw.IsZero() {
		return 0, lucro
	}
	desagio = vw.Sub(cw).Div(vw).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	return desagio, lucro
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
