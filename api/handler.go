package api

import (
	"errors"
	"net/http"

	"api_vendas/internal/vendas"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// vendasHandler holds the vendas service and implements HTTP handlers for
// the sales endpoints.
type vendasHandler struct {
	service *vendas.Service
	logger  *zap.Logger
}

// NewVendasHandler creates a new vendas handler.
func NewVendasHandler(service *vendas.Service, logger *zap.Logger) *vendasHandler {
	return &vendasHandler{
		service: service,
		logger:  logger,
	}
}

// vendaRequest is the body accepted by POST and PUT. The amounts are
// pointers so that an explicit 0 passes the required check while an absent
// field does not. desagio_percentual and lucro are deliberately not bound:
// clients are never trusted with the derived fields.
type vendaRequest struct {
	DataVenda   string   `json:"data_venda" binding:"required"`
	Cliente     string   `json:"cliente" binding:"required"`
	Situacao    string   `json:"situacao" binding:"required"`
	Localizador string   `json:"localizador" binding:"required"`
	Origem      string   `json:"origem" binding:"required"`
	Titular     string   `json:"titular" binding:"required"`
	ValorWallet *float64 `json:"valor_wallet" binding:"required"`
	CustoWallet *float64 `json:"custo_wallet" binding:"required"`
	ValorVenda  *float64 `json:"valor_venda" binding:"required"`
	Emissor     string   `json:"emissor" binding:"required"`
	Financeiro  string   `json:"financeiro" binding:"required"`
}

func (r vendaRequest) toInput() vendas.VendaInput {
	return vendas.VendaInput{
		DataVenda:   r.DataVenda,
		Cliente:     r.Cliente,
		Situacao:    r.Situacao,
		Localizador: r.Localizador,
		Origem:      r.Origem,
		Titular:     r.Titular,
		ValorWallet: *r.ValorWallet,
		CustoWallet: *r.CustoWallet,
		ValorVenda:  *r.ValorVenda,
		Emissor:     r.Emissor,
		Financeiro:  r.Financeiro,
	}
}

type opcaoResponse struct {
	DistinctValue string `json:"distinct_value"`
}

// handleListVendas handles GET /api/vendas.
func (h *vendasHandler) handleListVendas(ctx *gin.Context) {
	filtros := vendas.Filtros{
		Situacao:   ctx.Query("situacao"),
		Titular:    ctx.Query("titular"),
		Emissor:    ctx.Query("emissor"),
		DataInicio: ctx.Query("data_inicio"),
		DataFim:    ctx.Query("data_fim"),
	}

	result, err := h.service.ListVendas(ctx.Request.Context(), filtros)
	if err != nil {
		respondError(ctx, http.StatusInternalServerError, "Erro interno ao buscar vendas", err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// handleOpcoes handles GET /api/opcoes/:campo.
func (h *vendasHandler) handleOpcoes(ctx *gin.Context) {
	campo := ctx.Param("campo")

	values, err := h.service.Opcoes(ctx.Request.Context(), campo)
	if err != nil {
		if errors.Is(err, vendas.ErrInvalidInput) {
			respondError(ctx, http.StatusBadRequest, "Campo inválido para buscar opções.", err)
			return
		}
		respondError(ctx, http.StatusInternalServerError, "Erro interno ao buscar opções para "+campo, err)
		return
	}

	opcoes := make([]opcaoResponse, 0, len(values))
	for _, value := range values {
		opcoes = append(opcoes, opcaoResponse{DistinctValue: value})
	}
	ctx.JSON(http.StatusOK, opcoes)
}

// handleCreateVenda handles POST /api/vendas.
func (h *vendasHandler) handleCreateVenda(ctx *gin.Context) {
	var req vendaRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind create request", zap.Error(err))
		respondError(ctx, http.StatusBadRequest, "Todos os campos obrigatórios devem ser fornecidos.", err)
		return
	}

	venda, err := h.service.CreateVenda(ctx.Request.Context(), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, vendas.ErrConflict):
			respondError(ctx, http.StatusConflict, "Erro de conflito ao criar venda.", err)
		case errors.Is(err, vendas.ErrInvalidInput):
			respondError(ctx, http.StatusBadRequest, "Formato inválido para algum campo.", err)
		default:
			respondError(ctx, http.StatusInternalServerError, "Erro interno ao criar venda", err)
		}
		return
	}

	ctx.JSON(http.StatusCreated, venda)
}

// handleUpdateVenda handles PUT /api/vendas/:id with full-record replace
// semantics.
func (h *vendasHandler) handleUpdateVenda(ctx *gin.Context) {
	id := ctx.Param("id")

	var req vendaRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind update request", zap.String("venda_id", id), zap.Error(err))
		respondError(ctx, http.StatusBadRequest, "Todos os campos obrigatórios devem ser fornecidos para atualização.", err)
		return
	}

	venda, err := h.service.UpdateVenda(ctx.Request.Context(), id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, vendas.ErrNotFound):
			respondError(ctx, http.StatusNotFound, "Venda não encontrada.", err)
		case errors.Is(err, vendas.ErrConflict):
			respondError(ctx, http.StatusConflict, "Erro de conflito ao atualizar venda.", err)
		case errors.Is(err, vendas.ErrInvalidInput):
			respondError(ctx, http.StatusBadRequest, "Formato inválido para algum campo.", err)
		default:
			respondError(ctx, http.StatusInternalServerError, "Erro interno ao atualizar venda", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, venda)
}

// handleDeleteVenda handles DELETE /api/vendas/:id.
func (h *vendasHandler) handleDeleteVenda(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := h.service.DeleteVenda(ctx.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, vendas.ErrNotFound):
			respondError(ctx, http.StatusNotFound, "Venda não encontrada para exclusão.", err)
		case errors.Is(err, vendas.ErrInvalidInput):
			respondError(ctx, http.StatusBadRequest, "Formato inválido para algum campo.", err)
		default:
			respondError(ctx, http.StatusInternalServerError, "Erro interno ao deletar venda", err)
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// handleIndicadores handles GET /api/indicadores.
func (h *vendasHandler) handleIndicadores(ctx *gin.Context) {
	ind, err := h.service.Indicadores(ctx.Request.Context())
	if err != nil {
		respondError(ctx, http.StatusInternalServerError, "Erro interno ao buscar indicadores", err)
		return
	}

	ctx.JSON(http.StatusOK, ind)
}

// handleSaldos handles GET /api/saldos.
func (h *vendasHandler) handleSaldos(ctx *gin.Context) {
	saldos, err := h.service.Saldos(ctx.Request.Context())
	if err != nil {
		respondError(ctx, http.StatusInternalServerError, "Erro interno ao buscar saldos por titular", err)
		return
	}

	ctx.JSON(http.StatusOK, saldos)
}

// respondError writes the error envelope used by every endpoint: a short
// message plus the underlying error text.
func respondError(ctx *gin.Context, status int, message string, err error) {
	body := gin.H{"error": message}
	if err != nil {
		body["details"] = err.Error()
	}
	ctx.JSON(status, body)
}
