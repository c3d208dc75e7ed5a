package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"api_vendas/internal/vendas"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	InitRoutes(router, vendas.NewLocalStorage(), zaptest.NewLogger(t), []string{"http://localhost:5173"})
	return router
}

func performRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		reader = bytes.NewBuffer(bodyBytes)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func exampleBody() map[string]any {
	return map[string]any{
		"data_venda":   "2025-01-10",
		"cliente":      "Ana",
		"situacao":     "APROVADO",
		"localizador":  "LOC1",
		"origem":       "WEB",
		"titular":      "H1",
		"valor_wallet": 1000,
		"custo_wallet": 900,
		"valor_venda":  950,
		"emissor":      "AZUL",
		"financeiro":   "PAGO",
	}
}

func TestHealthRoute(t *testing.T) {
	router := setupRouter(t)

	w := performRequest(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "API Gestor de Vendas está funcionando!", w.Body.String())
}

// TestVendasFullFlow covers POST -> GET -> PUT -> DELETE on the happy path.
func TestVendasFullFlow(t *testing.T) {
	router := setupRouter(t)

	var created vendas.Venda

	t.Run("POST_CreateVenda", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/vendas", exampleBody())

		require.Equal(t, http.StatusCreated, w.Code, "expected HTTP 201 for a valid venda")
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID, "expected venda ID to be generated")
		assert.False(t, created.CreatedAt.IsZero(), "expected created_at to be assigned")
		assert.Equal(t, 50.0, created.Lucro, "expected lucro computed server-side")
		assert.Equal(t, 10.0, created.DesagioPercentual, "expected desagio computed server-side")
		assert.Equal(t, "Ana", created.Cliente)
	})

	require.NotEmpty(t, created.ID, "venda was not created in the POST step")

	t.Run("GET_ListVendas", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/vendas?titular=H1", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var list []vendas.Venda
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
		assert.Equal(t, "2025-01-10", list[0].DataVenda)
	})

	t.Run("PUT_UpdateVenda", func(t *testing.T) {
		body := exampleBody()
		body["valor_venda"] = 980
		body["situacao"] = "PENDENTE"
		w := performRequest(router, http.MethodPut, "/api/vendas/"+created.ID, body)

		require.Equal(t, http.StatusOK, w.Code, "expected HTTP 200 for a valid update")
		var updated vendas.Venda
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, created.ID, updated.ID, "id must be immutable")
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt), "created_at must be immutable")
		assert.Equal(t, "PENDENTE", updated.Situacao)
		assert.Equal(t, 80.0, updated.Lucro, "lucro must be recomputed on update")
	})

	t.Run("DELETE_Venda", func(t *testing.T) {
		w := performRequest(router, http.MethodDelete, "/api/vendas/"+created.ID, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String(), "expected empty body on 204")

		w = performRequest(router, http.MethodDelete, "/api/vendas/"+created.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "deleting a missing id is 404, not 500")
	})
}

func TestCreateVendaMissingField(t *testing.T) {
	router := setupRouter(t)

	for _, campo := range []string{"data_venda", "titular", "valor_wallet", "custo_wallet", "valor_venda", "financeiro"} {
		t.Run(campo, func(t *testing.T) {
			body := exampleBody()
			delete(body, campo)

			w := performRequest(router, http.MethodPost, "/api/vendas", body)

			assert.Equal(t, http.StatusBadRequest, w.Code, fmt.Sprintf("missing %s must be rejected", campo))
			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "Todos os campos obrigatórios devem ser fornecidos.", resp["error"])
		})
	}
}

func TestCreateVendaZeroAmountPresent(t *testing.T) {
	router := setupRouter(t)

	// An explicit 0 passes the required-field check but violates the
	// valor_wallet > 0 invariant.
	body := exampleBody()
	body["valor_wallet"] = 0

	w := performRequest(router, http.MethodPost, "/api/vendas", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Formato inválido para algum campo.", resp["error"])
	assert.Contains(t, resp["details"], "valor_wallet")
}

func TestCreateVendaConflict(t *testing.T) {
	router := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/vendas", exampleBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(router, http.MethodPost, "/api/vendas", exampleBody())
	assert.Equal(t, http.StatusConflict, w.Code, "duplicated localizador must map to 409")
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Erro de conflito ao criar venda.", resp["error"])
}

func TestUpdateVendaNotFoundHTTP(t *testing.T) {
	router := setupRouter(t)

	w := performRequest(router, http.MethodPut, "/api/vendas/00000000-0000-0000-0000-000000000000", exampleBody())

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Venda não encontrada.", resp["error"])
}

func TestUpdateVendaZeroAmount(t *testing.T) {
	router := setupRouter(t)

	w := performRequest(router, http.MethodPost, "/api/vendas", exampleBody())
	require.Equal(t, http.StatusCreated, w.Code)
	var created vendas.Venda
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	body := exampleBody()
	body["valor_wallet"] = 0
	w = performRequest(router, http.MethodPut, "/api/vendas/"+created.ID, body)
	assert.Equal(t, http.StatusBadRequest, w.Code, "valor_wallet = 0 must be rejected on update")
}

func TestOpcoes(t *testing.T) {
	router := setupRouter(t)

	t.Run("invalid campo", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/opcoes/invalidfield", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Campo inválido para buscar opções.", resp["error"])
	})

	t.Run("distinct titulares", func(t *testing.T) {
		for i, titular := range []string{"H2", "H1", "H2"} {
			body := exampleBody()
			body["titular"] = titular
			body["localizador"] = fmt.Sprintf("OPC%d", i)
			w := performRequest(router, http.MethodPost, "/api/vendas", body)
			require.Equal(t, http.StatusCreated, w.Code)
		}

		w := performRequest(router, http.MethodGet, "/api/opcoes/titular", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var opcoes []struct {
			DistinctValue string `json:"distinct_value"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opcoes))
		require.Len(t, opcoes, 2, "expected deduplicated titulares")
		assert.Equal(t, "H1", opcoes[0].DistinctValue)
		assert.Equal(t, "H2", opcoes[1].DistinctValue)
	})
}

func TestIndicadoresEmptyTable(t *testing.T) {
	router := setupRouter(t)

	w := performRequest(router, http.MethodGet, "/api/indicadores", nil)

	require.Equal(t, http.StatusOK, w.Code, "an empty table is never an error")
	assert.JSONEq(t,
		`{"total_registros":0,"total_vendas":0,"total_lucro":0,"desagio_medio":0}`,
		w.Body.String())
}

func TestIndicadoresIgnoreFilters(t *testing.T) {
	router := setupRouter(t)

	for i, situacao := range []string{"APROVADO", "CANCELADO"} {
		body := exampleBody()
		body["situacao"] = situacao
		body["localizador"] = fmt.Sprintf("IND%d", i)
		w := performRequest(router, http.MethodPost, "/api/vendas", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// The indicators aggregate covers the whole table even when the list
	// endpoint would be filtered.
	w := performRequest(router, http.MethodGet, "/api/indicadores?situacao=APROVADO", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var ind vendas.Indicadores
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ind))
	assert.Equal(t, int64(2), ind.TotalRegistros)
	assert.Equal(t, 1900.0, ind.TotalVendas)
	assert.Equal(t, 100.0, ind.TotalLucro)
	assert.Equal(t, 10.0, ind.DesagioMedio)
}

func TestSaldosRoute(t *testing.T) {
	router := setupRouter(t)

	for i, titular := range []string{"H1", "H1", "H2"} {
		body := exampleBody()
		body["titular"] = titular
		body["localizador"] = fmt.Sprintf("SAL%d", i)
		w := performRequest(router, http.MethodPost, "/api/vendas", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := performRequest(router, http.MethodGet, "/api/saldos", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var saldos []vendas.SaldoTitular
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saldos))
	require.Len(t, saldos, 2)
	assert.Equal(t, vendas.SaldoTitular{Titular: "H1", SaldoLucro: 100}, saldos[0])
	assert.Equal(t, vendas.SaldoTitular{Titular: "H2", SaldoLucro: 50}, saldos[1])
}
