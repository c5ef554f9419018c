package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/base/delivery"
	"github.com/Protivsporta/NFTMarketplace/domain"
	"github.com/Protivsporta/NFTMarketplace/domain/marketplace"
	"github.com/Protivsporta/NFTMarketplace/middleware"
	authMiddleware "github.com/Protivsporta/NFTMarketplace/stores/auth/delivery/http/middleware"
)

type handler struct {
	marketplace marketplace.UseCase
	sales       marketplace.SaleRepo
}

func New(e *echo.Echo, auth *authMiddleware.AuthMiddleware, mk marketplace.UseCase, sales marketplace.SaleRepo) {
	h := &handler{marketplace: mk, sales: sales}

	g := e.Group("/items")
	g.POST("", h.createItem, auth.Auth(), auth.IsAdmin())
	g.GET("", h.findItems, middleware.CacheHttp(15*time.Second))
	g.GET("/:itemId", h.getItem, middleware.CacheHttp(15*time.Second))
	g.POST("/:itemId/list", h.listItem, auth.Auth())
	g.POST("/:itemId/buy", h.buyItem, auth.Auth())
	g.POST("/:itemId/cancel", h.cancel, auth.Auth())
	g.POST("/:itemId/auction", h.listItemOnAuction, auth.Auth())
	g.POST("/:itemId/bid", h.makeBid, auth.Auth())
	g.POST("/:itemId/finish", h.finishAuction, auth.Auth())

	s := e.Group("/settings")
	s.GET("", h.getSettings)
	s.PATCH("", h.changeSettings, auth.Auth(), auth.IsAdmin())

	e.GET("/sales", h.findSales, middleware.CacheHttp(30*time.Second))
}

func statusOf(err error) int {
	switch err {
	case domain.ErrNotOwner, domain.ErrUnauthorized:
		return http.StatusForbidden
	case domain.ErrItemBusy:
		return http.StatusConflict
	case domain.ErrNotOnSale, domain.ErrNotOnAuction, domain.ErrAlreadyListed,
		domain.ErrSelfPurchase, domain.ErrBidTooLow, domain.ErrAuctionStillOpen,
		domain.ErrAuctionExpired, domain.ErrInvalidParameter, domain.ErrBadParamInput:
		return http.StatusBadRequest
	case domain.ErrMintFailure, domain.ErrTransferNotApproved,
		domain.ErrPaymentNotApproved, domain.ErrRefundFailure:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func itemIdParam(c echo.Context) (marketplace.ItemId, error) {
	id, err := domain.ParseItemId(c.Param("itemId"))
	if err != nil {
		return marketplace.ItemId{}, domain.ErrBadParamInput
	}
	return marketplace.ItemId{ItemId: id}, nil
}

// createItem
//
//	@Summary		Create item
//	@Description	Mint a new asset to recipient and register it as a marketplace item
//	@Tags			marketplace
//	@Accept			json
//	@Produce		json
//	@Param			params	body		http.createItem.params	true	"params"
//	@Success		201		{object}	marketplace.Item
//	@Failure		400
//	@Failure		403
//	@Failure		422
//	@Router			/items [post]
func (h *handler) createItem(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Recipient domain.Address `json:"recipient"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if p.Recipient.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	item, err := h.marketplace.CreateItem(ctx, caller, p.Recipient)
	if err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, item)
}

// findItems
//
//	@Summary		List items
//	@Tags			marketplace
//	@Produce		json
//	@Param			owner		query		string	false	"filter by owner"
//	@Param			onSale		query		bool	false	"filter by sale flag"
//	@Param			isOnAuction	query		bool	false	"filter by auction flag"
//	@Param			offset		query		int		false	"paging offset"
//	@Param			limit		query		int		false	"paging limit"
//	@Success		200			{object}	[]marketplace.Item
//	@Router			/items [get]
func (h *handler) findItems(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Owner       *domain.Address `query:"owner"`
		OnSale      *bool           `query:"onSale"`
		IsOnAuction *bool           `query:"isOnAuction"`
		Offset      int32           `query:"offset"`
		Limit       int32           `query:"limit"`
	}
	p := &params{Limit: 30}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	opts := []marketplace.FindAllOptionsFunc{
		marketplace.WithPagination(p.Offset, p.Limit),
		marketplace.WithSort("itemId", domain.SortDirAsc),
	}
	if p.Owner != nil {
		opts = append(opts, marketplace.WithOwner(*p.Owner))
	}
	if p.OnSale != nil {
		opts = append(opts, marketplace.WithOnSale(*p.OnSale))
	}
	if p.IsOnAuction != nil {
		opts = append(opts, marketplace.WithIsOnAuction(*p.IsOnAuction))
	}

	items, err := h.marketplace.FindAll(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, items)
}

// getItem
//
//	@Summary		Get item
//	@Tags			marketplace
//	@Produce		json
//	@Param			itemId	path		int	true	"item id"
//	@Success		200		{object}	marketplace.Item
//	@Failure		404
//	@Router			/items/{itemId} [get]
func (h *handler) getItem(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id, err := itemIdParam(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	item, err := h.marketplace.GetItem(ctx, id)
	if err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, item)
}

// listItem
//
//	@Summary		List item for fixed-price sale
//	@Tags			marketplace
//	@Accept			json
//	@Produce		json
//	@Param			itemId	path	int						true	"item id"
//	@Param			params	body	http.listItem.params	true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Router			/items/{itemId}/list [post]
func (h *handler) listItem(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	id, err := itemIdParam(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	type params struct {
		Price domain.TokenAmount `json:"price"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.marketplace.ListItem(ctx, caller, id, p.Price); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// buyItem
//
//	@Summary		Buy a listed item at its fixed price
//	@Tags			marketplace
//	@Produce		json
//	@Param			itemId	path	int	true	"item id"
//	@Success		200
//	@Failure		400
//	@Failure		422
//	@Router			/items/{itemId}/buy [post]
func (h *handler) buyItem(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	id, err := itemIdParam(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.marketplace.BuyItem(ctx, caller, id); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// cancel
//
//	@Summary		Cancel a fixed-price listing
//	@Tags			marketplace
//	@Produce		json
//	@Param			itemId	path	int	true	"item id"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Router			/items/{itemId}/cancel [post]
func (h *handler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	id, err := itemIdParam(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.marketplace.Cancel(ctx, caller, id); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// listItemOnAuction
//
//	@Summary		Open a timed auction for the item
//	@Tags			marketplace
//	@Accept			json
//	@Produce		json
//	@Param			itemId	path	int								true	"item id"
//	@Param			params	body	http.listItemOnAuction.params	true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Router			/items/{itemId}/auction [post]
func (h *handler) listItemOnAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	id, err := itemIdParam(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	type params struct {
		StartingPrice domain.TokenAmount `json:"startingPrice"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.marketplace.ListItemOnAuction(ctx, caller, id, p.StartingPrice); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// makeBid
//
//	@Summary		Place a bid on an open auction
//	@Tags			marketplace
//	@Accept			json
//	@Produce		json
//	@Param			itemId	path	int						true	"item id"
//	@Param			params	body	http.makeBid.params		true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		422
//	@Router			/items/{itemId}/bid [post]
func (h *handler) makeBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	id, err := itemIdParam(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	type params struct {
		Amount domain.TokenAmount `json:"amount"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.marketplace.MakeBid(ctx, caller, id, p.Amount); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// finishAuction
//
//	@Summary		Settle an expired auction
//	@Tags			marketplace
//	@Produce		json
//	@Param			itemId	path	int	true	"item id"
//	@Success		200
//	@Failure		400
//	@Failure		422
//	@Router			/items/{itemId}/finish [post]
func (h *handler) finishAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	id, err := itemIdParam(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.marketplace.FinishAuction(ctx, caller, id); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// getSettings
//
//	@Summary		Get auction settings
//	@Tags			marketplace
//	@Produce		json
//	@Success		200	{object}	marketplace.AuctionSettings
//	@Router			/settings [get]
func (h *handler) getSettings(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	return delivery.MakeJsonResp(c, http.StatusOK, h.marketplace.GetAuctionSettings(ctx))
}

// changeSettings
//
//	@Summary		Change auction settings
//	@Description	Admin only. Applies to auctions opened after the call.
//	@Tags			marketplace
//	@Accept			json
//	@Produce		json
//	@Param			params	body	marketplace.AuctionSettings	true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Router			/settings [patch]
func (h *handler) changeSettings(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	p := &marketplace.AuctionSettings{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.marketplace.ChangeAuctionSettings(ctx, caller, *p); err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// findSales
//
//	@Summary		List completed sales, newest first
//	@Tags			marketplace
//	@Produce		json
//	@Param			offset	query		int	false	"paging offset"
//	@Param			limit	query		int	false	"paging limit"
//	@Success		200		{object}	[]marketplace.Sale
//	@Router			/sales [get]
func (h *handler) findSales(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Offset int32 `query:"offset"`
		Limit  int32 `query:"limit"`
	}
	p := &params{Limit: 30}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	sales, err := h.sales.FindAll(ctx, p.Offset, p.Limit)
	if err != nil {
		return delivery.MakeJsonResp(c, statusOf(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, sales)
}
