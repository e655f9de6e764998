package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradeflow/internal/codec"
	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

const basePath = "/api/v1"

var errNoMetrics = errors.New("metrics not configured")

// Prices reads the latest internal price of a bond.
type Prices interface {
	Get(id string) (schema.Price, bool)
}

// Books reads order book views of a bond.
type Books interface {
	BestBidOffer(id string) (schema.BidOffer, error)
	AggregateDepth(id string) (schema.OrderBook, error)
}

// Positions reads the latest position of a bond.
type Positions interface {
	Get(id string) (schema.Position, bool)
}

// Risk reads per-bond and bucketed PV01.
type Risk interface {
	Get(id string) (schema.PV01[schema.Bond], bool)
	BucketedRiskByName(name string) (schema.PV01[schema.BucketedSector], error)
}

// Inquiries reads customer inquiries by inquiry id.
type Inquiries interface {
	Get(id string) (schema.Inquiry, bool)
}

// Deps are the read sides served by the handler. Nil members answer 404.
type Deps struct {
	Prices    Prices
	Books     Books
	Positions Positions
	Risk      Risk
	Inquiries Inquiries
	Metrics   http.Handler
}

// Handler serves the read API over the pipeline stores.
type Handler struct {
	router *gin.Engine
	deps   Deps
}

// NewHandler builds the router.
func NewHandler(deps Deps) *Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	h := &Handler{router: router, deps: deps}
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	h.router.GET("/metrics", h.metrics)

	api := h.router.Group(basePath)
	{
		api.GET("/prices/:id", h.getPrice)
		api.GET("/books/:id/best", h.getBestBidOffer)
		api.GET("/books/:id/depth", h.getDepth)
		api.GET("/positions/:id", h.getPosition)
		api.GET("/risk/bonds/:id", h.getRisk)
		api.GET("/risk/buckets/:name", h.getBucketedRisk)
		api.GET("/inquiries/:id", h.getInquiry)
	}
}

func (h *Handler) metrics(c *gin.Context) {
	if h.deps.Metrics == nil {
		writeError(c, http.StatusNotFound, errNoMetrics)
		return
	}
	h.deps.Metrics.ServeHTTP(c.Writer, c.Request)
}

func (h *Handler) getPrice(c *gin.Context) {
	if h.deps.Prices == nil {
		writeError(c, http.StatusNotFound, exception.ErrNotFound)
		return
	}
	price, ok := h.deps.Prices.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, exception.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, priceResponse{
		Bond:   price.Bond.ID,
		Mid:    codec.EncodePrice(price.Mid),
		Spread: codec.EncodePrice(price.Spread),
	})
}

func (h *Handler) getBestBidOffer(c *gin.Context) {
	if h.deps.Books == nil {
		writeError(c, http.StatusNotFound, exception.ErrNotFound)
		return
	}
	bo, err := h.deps.Books.BestBidOffer(c.Param("id"))
	if err != nil {
		writeError(c, statusOf(err), err)
		return
	}
	c.JSON(http.StatusOK, bidOfferResponse{
		Bid:    newLevel(bo.Bid),
		Offer:  newLevel(bo.Offer),
		Spread: codec.EncodePrice(bo.Spread()),
	})
}

func (h *Handler) getDepth(c *gin.Context) {
	if h.deps.Books == nil {
		writeError(c, http.StatusNotFound, exception.ErrNotFound)
		return
	}
	book, err := h.deps.Books.AggregateDepth(c.Param("id"))
	if err != nil {
		writeError(c, statusOf(err), err)
		return
	}
	c.JSON(http.StatusOK, bookResponse{
		Bond:   book.Bond.ID,
		Bids:   newLevels(book.Bids),
		Offers: newLevels(book.Offers),
	})
}

func (h *Handler) getPosition(c *gin.Context) {
	if h.deps.Positions == nil {
		writeError(c, http.StatusNotFound, exception.ErrNotFound)
		return
	}
	p, ok := h.deps.Positions.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, exception.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, positionResponse{
		Bond:      p.Bond.ID,
		Books:     p.Positions(),
		Aggregate: p.Aggregate(),
	})
}

func (h *Handler) getRisk(c *gin.Context) {
	if h.deps.Risk == nil {
		writeError(c, http.StatusNotFound, exception.ErrNotFound)
		return
	}
	r, ok := h.deps.Risk.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, exception.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, riskResponse{Product: r.Product.ID, PV01: r.PV01, Quantity: r.Quantity})
}

func (h *Handler) getBucketedRisk(c *gin.Context) {
	if h.deps.Risk == nil {
		writeError(c, http.StatusNotFound, exception.ErrNotFound)
		return
	}
	r, err := h.deps.Risk.BucketedRiskByName(c.Param("name"))
	if err != nil {
		writeError(c, statusOf(err), err)
		return
	}
	c.JSON(http.StatusOK, riskResponse{Product: r.Product.Name, PV01: r.PV01, Quantity: r.Quantity})
}

func (h *Handler) getInquiry(c *gin.Context) {
	if h.deps.Inquiries == nil {
		writeError(c, http.StatusNotFound, exception.ErrNotFound)
		return
	}
	inq, ok := h.deps.Inquiries.Get(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, exception.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, inquiryResponse{
		ID:       inq.InquiryID,
		Bond:     inq.Bond.ID,
		Side:     inq.Side.String(),
		Quantity: inq.Quantity,
		Price:    codec.EncodePrice(inq.Price),
		State:    inq.State.String(),
	})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, exception.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, exception.ErrEmptyBook):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
