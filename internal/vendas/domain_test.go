package vendas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcularDerivados(t *testing.T) {
	cases := []struct {
		name        string
		valorWallet float64
		custoWallet float64
		valorVenda  float64
		wantDesagio float64
		wantLucro   float64
	}{
		{
			name:        "standard 10 percent discount",
			valorWallet: 1000, custoWallet: 900, valorVenda: 950,
			wantDesagio: 10, wantLucro: 50,
		},
		{
			name:        "repeating decimal rounds to two places",
			valorWallet: 3, custoWallet: 2, valorVenda: 5,
			wantDesagio: 33.33, wantLucro: 3,
		},
		{
			name:        "cost above face value yields negative desagio",
			valorWallet: 100, custoWallet: 110, valorVenda: 120,
			wantDesagio: -10, wantLucro: 10,
		},
		{
			name:        "sale below cost yields negative lucro",
			valorWallet: 200, custoWallet: 180, valorVenda: 150,
			wantDesagio: 10, wantLucro: -30,
		},
		{
			name:        "fractional amounts",
			valorWallet: 150, custoWallet: 135, valorVenda: 140.555,
			wantDesagio: 10, wantLucro: 5.56,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			desagio, lucro := calcularDerivados(tc.valorWallet, tc.custoWallet, tc.valorVenda)
			assert.Equal(t, tc.wantDesagio, desagio)
			assert.Equal(t, tc.wantLucro, lucro)
		})
	}
}

func TestCalcularDerivadosZeroWallet(t *testing.T) {
	// The service rejects valor_wallet <= 0 before storage, but the helper
	// must still not divide by zero.
	desagio, lucro := calcularDerivados(0, 0, 10)
	assert.Equal(t, 0.0, desagio)
	assert.Equal(t, 10.0, lucro)
}

func TestCampoValido(t *testing.T) {
	for _, campo := range []string{"titular", "emissor", "situacao", "financeiro"} {
		assert.True(t, CampoValido(campo), campo)
	}
	assert.False(t, CampoValido("cliente"))
	assert.False(t, CampoValido("invalidfield"))
	assert.False(t, CampoValido(""))
}
