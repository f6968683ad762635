package shops

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tirescan-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the shops service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches shop routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/shops", h.listShops)
	rg.POST("/shops", h.createShop)
	rg.GET("/shops/:id", h.getShop)
	rg.POST("/shops/:id/tires", h.addTire)
}

func (h *Handler) listShops(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to list shops")
		return
	}
	respond.OK(c, gin.H{"shops": items})
}

func (h *Handler) getShop(c *gin.Context) {
	c.Set("shopId", c.Param("id"))
	shop, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch shop")
		return
	}
	respond.OK(c, shop)
}

func (h *Handler) createShop(c *gin.Context) {
	var in CreateShopInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body")
		return
	}
	shop, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err, "failed to create shop")
		return
	}
	c.Set("shopId", shop.ID)
	respond.Created(c, gin.H{"shop": shop})
}

func (h *Handler) addTire(c *gin.Context) {
	c.Set("shopId", c.Param("id"))
	var in AddTireInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body")
		return
	}
	tire, err := h.Svc.AddTire(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err, "failed to add tire")
		return
	}
	respond.Created(c, tire)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "shop not found")
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error())
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, fallback)
	}
}
