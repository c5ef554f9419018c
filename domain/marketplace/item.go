package marketplace

import (
	"time"

	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/domain"
)

// Item is the unit of trade: one registry asset plus its marketplace state.
// Records are append-only; sold or cancelled items stay in the table with the
// flags cleared.
type Item struct {
	ItemId       domain.ItemId      `json:"itemId" bson:"itemId"`
	Owner        domain.Address     `json:"owner" bson:"owner"`
	InitialPrice domain.TokenAmount `json:"initialPrice" bson:"initialPrice"`
	OnSale       bool               `json:"onSale" bson:"onSale"`
	IsOnAuction  bool               `json:"isOnAuction" bson:"isOnAuction"`
	CurrentBid   domain.TokenAmount `json:"currentBid" bson:"currentBid"`
	LastBidder   domain.Address     `json:"lastBidder" bson:"lastBidder"`
	NumberOfBids int32              `json:"numberOfBids" bson:"numberOfBids"`
	AuctionEnd   time.Time          `json:"auctionEnd" bson:"auctionEnd"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (i *Item) ToId() ItemId {
	return ItemId{ItemId: i.ItemId}
}

type ItemId struct {
	ItemId domain.ItemId `json:"itemId" bson:"itemId"`
}

// ItemPatchable carries the mutable subset of Item for partial updates.
// Nil fields are left untouched.
type ItemPatchable struct {
	Owner        *domain.Address     `bson:"owner,omitempty"`
	InitialPrice *domain.TokenAmount `bson:"initialPrice,omitempty"`
	OnSale       *bool               `bson:"onSale,omitempty"`
	IsOnAuction  *bool               `bson:"isOnAuction,omitempty"`
	CurrentBid   *domain.TokenAmount `bson:"currentBid,omitempty"`
	LastBidder   *domain.Address     `bson:"lastBidder,omitempty"`
	NumberOfBids *int32              `bson:"numberOfBids,omitempty"`
	AuctionEnd   *time.Time          `bson:"auctionEnd,omitempty"`
	UpdatedAt    *time.Time          `bson:"updatedAt,omitempty"`
}

type FindAllOptions struct {
	Owner       *domain.Address `bson:"owner"`
	OnSale      *bool           `bson:"onSale"`
	IsOnAuction *bool           `bson:"isOnAuction"`
	Offset      *int32          `bson:"-"`
	Limit       *int32          `bson:"-"`
	SortBy      *string         `bson:"-"`
	SortDir     *domain.SortDir `bson:"-"`
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func WithOwner(owner domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		owner = owner.ToLower()
		options.Owner = &owner
		return nil
	}
}

func WithOnSale(onSale bool) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.OnSale = &onSale
		return nil
	}
}

func WithIsOnAuction(isOnAuction bool) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.IsOnAuction = &isOnAuction
		return nil
	}
}

func WithPagination(offset, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func WithSort(sortBy string, sortDir domain.SortDir) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.SortBy = &sortBy
		options.SortDir = &sortDir
		return nil
	}
}

// Repo owns the item table. NextItemId allocates from a strictly increasing
// sequence and never reuses a value.
type Repo interface {
	FindOne(c ctx.Ctx, id ItemId) (*Item, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Item, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	Create(c ctx.Ctx, item *Item) error
	Update(c ctx.Ctx, id ItemId, patchable ItemPatchable) error
	NextItemId(c ctx.Ctx) (domain.ItemId, error)
}

// AuctionSettings are the two process-wide auction parameters. They are read
// by every auction open and finish; changes never reach an already-open
// auction.
type AuctionSettings struct {
	AuctionDuration     int64 `json:"auctionDuration" bson:"auctionDuration"`         // seconds
	MinimalNumberOfBids int32 `json:"minimalNumberOfBids" bson:"minimalNumberOfBids"`
}

func (s AuctionSettings) Validate() error {
	if s.AuctionDuration <= 0 || s.MinimalNumberOfBids < 1 {
		return domain.ErrInvalidParameter
	}
	return nil
}

type SettingsRepo interface {
	Get(c ctx.Ctx) (*AuctionSettings, error)
	Upsert(c ctx.Ctx, settings AuctionSettings) error
}

// UseCase is the marketplace engine surface.
type UseCase interface {
	CreateItem(c ctx.Ctx, caller, recipient domain.Address) (*Item, error)
	GetItem(c ctx.Ctx, id ItemId) (*Item, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Item, error)

	ListItem(c ctx.Ctx, caller domain.Address, id ItemId, price domain.TokenAmount) error
	BuyItem(c ctx.Ctx, caller domain.Address, id ItemId) error
	Cancel(c ctx.Ctx, caller domain.Address, id ItemId) error

	ListItemOnAuction(c ctx.Ctx, caller domain.Address, id ItemId, startingPrice domain.TokenAmount) error
	MakeBid(c ctx.Ctx, caller domain.Address, id ItemId, amount domain.TokenAmount) error
	FinishAuction(c ctx.Ctx, caller domain.Address, id ItemId) error

	GetAuctionSettings(c ctx.Ctx) AuctionSettings
	ChangeAuctionSettings(c ctx.Ctx, caller domain.Address, settings AuctionSettings) error
}
