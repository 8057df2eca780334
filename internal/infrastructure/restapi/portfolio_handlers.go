package restapi

import (
	"net/http"

	"portfolio_aggregator/internal/app/port"
	"portfolio_aggregator/internal/app/service"
	"portfolio_aggregator/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// APIPortfolioResponse определяет структуру ответа для эндпоинта портфеля.
type APIPortfolioResponse struct {
	Data          entity.PortfolioSnapshot `json:"data"`
	StatusMessage string                   `json:"status_message"`
}

// APIErrorResponse is returned for rejected requests.
type APIErrorResponse struct {
	Error string `json:"error"`
}

type addWalletRequest struct {
	Address string `json:"address" binding:"required"`
}

type endpointRequest struct {
	Endpoint string `json:"endpoint"`
}

type endpointResponse struct {
	Endpoint string `json:"endpoint"`
	Active   string `json:"active"`
}

// PortfolioHandler обрабатывает HTTP запросы, связанные с портфелем и списком кошельков.
type PortfolioHandler struct {
	portfolioService port.PortfolioService
	logger           *zap.Logger
}

// NewPortfolioHandler создает новый экземпляр PortfolioHandler.
func NewPortfolioHandler(ps port.PortfolioService, logger *zap.Logger) *PortfolioHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioHandler{
		portfolioService: ps,
		logger:           logger.Named("PortfolioHandler"),
	}
}

// GetPortfolioHandler returns the last published snapshot without triggering a run.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	c.JSON(http.StatusOK, newPortfolioResponse(h.portfolioService.Current()))
}

// RefreshPortfolioHandler runs an aggregation and returns its result.
func (h *PortfolioHandler) RefreshPortfolioHandler(c *gin.Context) {
	snapshot := h.portfolioService.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, newPortfolioResponse(snapshot))
}

func newPortfolioResponse(s entity.PortfolioSnapshot) APIPortfolioResponse {
	resp := APIPortfolioResponse{Data: s}
	switch {
	case s.HasError():
		resp.StatusMessage = s.Error
	case s.IsLoading && len(s.Tokens) == 0:
		resp.StatusMessage = "Portfolio is loading."
	case len(s.Tokens) == 0:
		resp.StatusMessage = "No portfolio data found. Add a wallet to get started."
	default:
		resp.StatusMessage = "Portfolio retrieved successfully."
	}
	return resp
}

// ListWalletsHandler returns the tracked wallets.
func (h *PortfolioHandler) ListWalletsHandler(c *gin.Context) {
	wallets, err := h.portfolioService.Wallets(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": wallets})
}

// AddWalletHandler starts tracking a wallet.
func (h *PortfolioHandler) AddWalletHandler(c *gin.Context) {
	var req addWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: service.ErrInvalidWalletAddress.Error()})
		return
	}
	wallet, err := h.portfolioService.AddWallet(c.Request.Context(), req.Address)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": wallet})
}

// RemoveWalletHandler stops tracking the wallet in the path.
func (h *PortfolioHandler) RemoveWalletHandler(c *gin.Context) {
	if err := h.portfolioService.RemoveWallet(c.Request.Context(), c.Param("address")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetEndpointHandler returns the custom RPC endpoint and the one in use.
func (h *PortfolioHandler) GetEndpointHandler(c *gin.Context) {
	endpoint, err := h.portfolioService.Endpoint(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, endpointResponse{Endpoint: endpoint, Active: h.portfolioService.ActiveEndpoint()})
}

// SetEndpointHandler sets or clears the custom RPC endpoint.
func (h *PortfolioHandler) SetEndpointHandler(c *gin.Context) {
	var req endpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: service.ErrInvalidEndpoint.Error()})
		return
	}
	if err := h.portfolioService.SetEndpoint(c.Request.Context(), req.Endpoint); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, endpointResponse{Endpoint: req.Endpoint, Active: h.portfolioService.ActiveEndpoint()})
}

// fail maps service errors to status codes. Unknown errors are logged and hidden.
func (h *PortfolioHandler) fail(c *gin.Context, err error) {
	for _, known := range []struct {
		err    error
		status int
	}{
		{service.ErrInvalidWalletAddress, http.StatusBadRequest},
		{service.ErrInvalidEndpoint, http.StatusBadRequest},
		{service.ErrWalletAlreadyTracked, http.StatusConflict},
		{service.ErrWalletNotFound, http.StatusNotFound},
	} {
		if errors.Is(err, known.err) {
			c.JSON(known.status, APIErrorResponse{Error: known.err.Error()})
			return
		}
	}
	h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, APIErrorResponse{Error: "Internal server error."})
}
