package order

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/voltpass/vpc-backend/internal/addresspool"
	"github.com/voltpass/vpc-backend/internal/consts"
	"github.com/voltpass/vpc-backend/internal/model"
	"github.com/voltpass/vpc-backend/internal/monitoring"
	"github.com/voltpass/vpc-backend/internal/oracle"
	"github.com/voltpass/vpc-backend/internal/store"
	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
	"github.com/voltpass/vpc-backend/internal/view"
)

type CreateOrderRequest struct {
	USD         float64 `json:"usd" binding:"required"`
	Method      string  `json:"method" binding:"required"`
	BuyerSolana string  `json:"buyer_solana" binding:"required"`
	Promo       string  `json:"promo"`
}

type CreateOrderResponse struct {
	OrderID        string            `json:"order_id"`
	Status         model.OrderStatus `json:"status"`
	DepositAddress string            `json:"deposit_address"`
	PayAmount      decimal.Decimal   `json:"pay_amount"`
	PaySymbol      string            `json:"pay_symbol"`
	VPCAmount      decimal.Decimal   `json:"vpc_amount"`
	ExpiresIn      string            `json:"expires_in"`
}

type GetOrderResponse struct {
	OrderID        string            `json:"order_id"`
	Status         model.OrderStatus `json:"status"`
	DepositAddress string            `json:"deposit_address"`
	USD            decimal.Decimal   `json:"usd"`
	Method         string            `json:"method"`
	VPCAmount      decimal.Decimal   `json:"vpc_amount"`
	PayAmount      decimal.Decimal   `json:"pay_amount"`
	PaySymbol      string            `json:"pay_symbol"`
	Txid           string            `json:"txid,omitempty"`
}

type handler struct {
	db        *gorm.DB
	store     *store.Store
	pool      *addresspool.Pool
	oracle    oracle.IOracle
	metrics   *monitoring.OrderMetrics
	appConfig *config.AppConfig
	logger    *logger.Logger
}

func New(
	db *gorm.DB,
	store *store.Store,
	pool *addresspool.Pool,
	oracle oracle.IOracle,
	metrics *monitoring.OrderMetrics,
	appConfig *config.AppConfig,
	logger *logger.Logger,
) IHandler {
	return &handler{
		db:        db,
		store:     store,
		pool:      pool,
		oracle:    oracle,
		metrics:   metrics,
		appConfig: appConfig,
		logger:    logger,
	}
}

// CreateOrder godoc
// @Summary Create a VPC purchase order
// @Description Allocates a deposit address and quotes amounts for a purchase
// @id createOrder
// @Tags Order
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Purchase parameters"
// @Success 200 {object} CreateOrderResponse
// @Failure 400 {object} view.ErrorResponse
// @Failure 500 {object} view.ErrorResponse
// @Router /orders [post]
func (h *handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("[CreateOrder][ShouldBindJSON]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid request"))
		return
	}

	usd := decimal.NewFromFloat(req.USD)
	minPurchase := decimal.NewFromFloat(h.appConfig.Order.MinPurchaseUSD)
	if usd.LessThan(minPurchase) {
		err := errors.Errorf("Minimum purchase is $%s", minPurchase.StringFixed(0))
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "purchase amount too low"))
		return
	}

	buyer := strings.TrimSpace(req.BuyerSolana)
	if len(buyer) < consts.MinSolanaAddressLen {
		err := errors.New("Please enter a valid Solana address to receive VPC.")
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid destination address"))
		return
	}

	method := strings.TrimSpace(req.Method)
	poolKey, ok := consts.MethodPoolKeys[method]
	if !ok {
		err := errors.Errorf("unknown payment method %q", method)
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "invalid payment method"))
		return
	}

	slot, err := h.pool.Checkout(poolKey)
	if err != nil {
		err = errors.Errorf("No available deposit addresses for %s. Try again later.", strings.ToUpper(method))
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, req, "pool exhausted"))
		return
	}

	vpcAmount := h.oracle.QuoteVPCAmount(usd, req.Promo)
	payAmount, paySymbol := h.oracle.QuotePayAmount(c.Request.Context(), usd, method)

	ttl := time.Duration(h.appConfig.Order.TTLMinutes) * time.Minute
	order := &model.Order{
		OrderID:        newOrderID(),
		Status:         model.OrderStatusPending,
		ExpiresAt:      time.Now().Add(ttl),
		USDAmount:      usd.Round(2),
		Method:         method,
		PoolKey:        poolKey,
		DepositAddress: slot.Address,
		DepositSlot:    slot.SlotID,
		BuyerSolana:    buyer,
		VPCAmount:      vpcAmount,
		PayAmount:      payAmount,
		PaySymbol:      paySymbol,
		Promo:          strings.TrimSpace(req.Promo),
	}

	if _, err := h.store.Order.Create(h.db, order); err != nil {
		// the slot must not leak when the order never existed
		h.pool.Release(poolKey, slot.SlotID)
		h.logger.Error("[CreateOrder][Create]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "failed to persist order"))
		return
	}

	h.metrics.RecordOrderCreated(method)

	c.JSON(http.StatusOK, view.CreateResponse[any](CreateOrderResponse{
		OrderID:        order.OrderID,
		Status:         order.Status,
		DepositAddress: order.DepositAddress,
		PayAmount:      order.PayAmount,
		PaySymbol:      order.PaySymbol,
		VPCAmount:      order.VPCAmount,
		ExpiresIn:      fmt.Sprintf("%d minutes", h.appConfig.Order.TTLMinutes),
	}, nil, nil, ""))
}

// GetOrder godoc
// @Summary Get order status
// @Description Returns the current snapshot of an order
// @id getOrder
// @Tags Order
// @Accept json
// @Produce json
// @Param id path string true "Order id"
// @Success 200 {object} GetOrderResponse
// @Failure 404 {object} view.ErrorResponse
// @Router /orders/{id} [get]
func (h *handler) GetOrder(c *gin.Context) {
	orderID := c.Param("id")

	o, err := h.store.Order.GetByOrderID(h.db, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, view.CreateResponse[any](nil, errors.New("Not found"), nil, ""))
			return
		}
		h.logger.Error("[GetOrder][GetByOrderID]", map[string]string{
			"order_id": orderID,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "failed to load order"))
		return
	}

	// read-triggered expiry: past-TTL orders report EXPIRED without waiting
	// for the next reconciliation tick. The transition is guarded on the
	// current status, so racing the reconciler can never overwrite PAID and
	// only the winner releases the slot.
	if o.Status == model.OrderStatusPending && o.Expired(time.Now()) && !h.appConfig.NoTimeout(o.Method) {
		won, err := h.store.Order.MarkExpired(h.db, o.OrderID)
		if err != nil {
			h.logger.Error("[GetOrder][MarkExpired]", map[string]string{
				"order_id": orderID,
				"error":    err.Error(),
			})
			c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "failed to expire order"))
			return
		}

		if won {
			o.Status = model.OrderStatusExpired
			h.pool.Release(o.PoolKey, o.DepositSlot)
			h.metrics.RecordOrderExpired(o.Method)
		} else {
			// lost to the reconciler; respond with its outcome
			o, err = h.store.Order.GetByOrderID(h.db, orderID)
			if err != nil {
				h.logger.Error("[GetOrder][Reload]", map[string]string{
					"order_id": orderID,
					"error":    err.Error(),
				})
				c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "failed to load order"))
				return
			}
		}
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](GetOrderResponse{
		OrderID:        o.OrderID,
		Status:         o.Status,
		DepositAddress: o.DepositAddress,
		USD:            o.USDAmount,
		Method:         o.Method,
		VPCAmount:      o.VPCAmount,
		PayAmount:      o.PayAmount,
		PaySymbol:      o.PaySymbol,
		Txid:           o.Txid,
	}, nil, nil, ""))
}

// ListOrders godoc
// @Summary List all orders
// @Description Returns a snapshot of every order, including settled and expired ones
// @id listOrders
// @Tags Order
// @Accept json
// @Produce json
// @Success 200 {object} []GetOrderResponse
// @Router /orders [get]
func (h *handler) ListOrders(c *gin.Context) {
	orders, err := h.store.Order.All(h.db)
	if err != nil {
		h.logger.Error("[ListOrders][All]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, nil, "failed to list orders"))
		return
	}

	resp := make([]GetOrderResponse, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		resp = append(resp, GetOrderResponse{
			OrderID:        o.OrderID,
			Status:         o.Status,
			DepositAddress: o.DepositAddress,
			USD:            o.USDAmount,
			Method:         o.Method,
			VPCAmount:      o.VPCAmount,
			PayAmount:      o.PayAmount,
			PaySymbol:      o.PaySymbol,
			Txid:           o.Txid,
		})
	}

	c.JSON(http.StatusOK, view.CreateResponse[any](resp, nil, nil, ""))
}

func newOrderID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
