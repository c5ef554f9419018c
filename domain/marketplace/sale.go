package marketplace

import (
	"time"

	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/domain"
)

type SaleKind string

const (
	SaleKindFixedPrice SaleKind = "fixedPrice"
	SaleKindAuction    SaleKind = "auction"
)

// Sale is the observable record of a completed sale, fixed-price or auction.
type Sale struct {
	Id     string             `json:"id" bson:"id"`
	ItemId domain.ItemId      `json:"itemId" bson:"itemId"`
	Seller domain.Address     `json:"seller" bson:"seller"`
	Buyer  domain.Address     `json:"buyer" bson:"buyer"`
	Price  domain.TokenAmount `json:"price" bson:"price"`
	Kind   SaleKind           `json:"kind" bson:"kind"`
	SoldAt time.Time          `json:"soldAt" bson:"soldAt"`
}

type SaleRepo interface {
	Create(c ctx.Ctx, sale *Sale) error
	FindAll(c ctx.Ctx, offset, limit int32) ([]*Sale, error)
}

// SaleEmitter fans a completed sale out to the observation surface. Emission
// is best effort and must never fail the enclosing sale.
type SaleEmitter interface {
	EmitSold(c ctx.Ctx, sale *Sale)
}
