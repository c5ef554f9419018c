package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/domain"
	"github.com/Protivsporta/NFTMarketplace/domain/accesscontrol"
	acmocks "github.com/Protivsporta/NFTMarketplace/domain/accesscontrol/mocks"
	"github.com/Protivsporta/NFTMarketplace/domain/marketplace"
	mpmocks "github.com/Protivsporta/NFTMarketplace/domain/marketplace/mocks"
	"github.com/Protivsporta/NFTMarketplace/domain/mocks"
)

const (
	engineAddress = domain.Address("0x00000000000000000000000000000000000000ee")
	seller        = domain.Address("0x0000000000000000000000000000000000000001")
	buyer         = domain.Address("0x0000000000000000000000000000000000000002")
	bidder        = domain.Address("0x0000000000000000000000000000000000000003")
	otherBidder   = domain.Address("0x0000000000000000000000000000000000000004")
	admin         = domain.Address("0x00000000000000000000000000000000000000ad")
)

type engineMocks struct {
	itemRepo      *mpmocks.Repo
	saleRepo      *mpmocks.SaleRepo
	settingsRepo  *mpmocks.SettingsRepo
	ledger        *mocks.PaymentLedger
	registry      *mocks.AssetRegistry
	accessControl *acmocks.UseCase
	saleEmitter   *mpmocks.SaleEmitter
}

func newTestEngine(c ctx.Ctx, settings marketplace.AuctionSettings) (*impl, *engineMocks) {
	m := &engineMocks{
		itemRepo:      &mpmocks.Repo{},
		saleRepo:      &mpmocks.SaleRepo{},
		settingsRepo:  &mpmocks.SettingsRepo{},
		ledger:        &mocks.PaymentLedger{},
		registry:      &mocks.AssetRegistry{},
		accessControl: &acmocks.UseCase{},
		saleEmitter:   &mpmocks.SaleEmitter{},
	}
	m.settingsRepo.On("Get", mock.Anything).Return(nil, domain.ErrNotFound)
	m.settingsRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	im := New(c, &MarketplaceUseCaseCfg{
		ItemRepo:        m.itemRepo,
		SaleRepo:        m.saleRepo,
		SettingsRepo:    m.settingsRepo,
		Ledger:          m.ledger,
		Registry:        m.registry,
		AccessControl:   m.accessControl,
		SaleEmitter:     m.saleEmitter,
		EngineAddress:   engineAddress,
		InitialSettings: settings,
	}).(*impl)
	return im, m
}

func defaultSettings() marketplace.AuctionSettings {
	return marketplace.AuctionSettings{
		AuctionDuration:     259200,
		MinimalNumberOfBids: 3,
	}
}

func fixClock(t *testing.T, at time.Time) {
	old := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = old })
}

func TestCreateItem(t *testing.T) {
	c := ctx.Background()
	im, m := newTestEngine(c, defaultSettings())

	m.itemRepo.On("NextItemId", mock.Anything).Return(domain.ItemId(7), nil)
	m.registry.On("MintTo", mock.Anything, buyer, domain.ItemId(7)).Return(nil)
	m.itemRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	item, err := im.CreateItem(c, seller, buyer)
	require.NoError(t, err)
	require.Equal(t, domain.ItemId(7), item.ItemId)
	require.Equal(t, buyer, item.Owner)
	require.Equal(t, domain.EmptyAddress, item.LastBidder)
	require.False(t, item.OnSale)
	require.False(t, item.IsOnAuction)
}

func TestCreateItemMintFailure(t *testing.T) {
	c := ctx.Background()
	im, m := newTestEngine(c, defaultSettings())

	m.itemRepo.On("NextItemId", mock.Anything).Return(domain.ItemId(7), nil)
	m.registry.On("MintTo", mock.Anything, buyer, domain.ItemId(7)).Return(domain.ErrMintFailure)

	_, err := im.CreateItem(c, seller, buyer)
	require.ErrorIs(t, err, domain.ErrMintFailure)
	m.itemRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListItem(t *testing.T) {
	c := ctx.Background()
	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId: 1,
		Owner:  seller,
	}, nil)
	m.registry.On("TransferFrom", mock.Anything, seller, engineAddress, domain.ItemId(1)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(p marketplace.ItemPatchable) bool {
		return p.OnSale != nil && *p.OnSale &&
			p.InitialPrice != nil && *p.InitialPrice == 100
	})).Return(nil)

	require.NoError(t, im.ListItem(c, seller, id, 100))
	m.registry.AssertCalled(t, "TransferFrom", mock.Anything, seller, engineAddress, domain.ItemId(1))
}

func TestListItemRejections(t *testing.T) {
	c := ctx.Background()
	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	require.ErrorIs(t, im.ListItem(c, seller, id, 0), domain.ErrInvalidParameter)

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId: 1,
		Owner:  seller,
	}, nil).Once()
	require.ErrorIs(t, im.ListItem(c, buyer, id, 100), domain.ErrNotOwner)

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId: 1,
		Owner:  seller,
		OnSale: true,
	}, nil).Once()
	require.ErrorIs(t, im.ListItem(c, seller, id, 100), domain.ErrAlreadyListed)

	m.registry.AssertNotCalled(t, "TransferFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListItemUpdateFailureReturnsAsset(t *testing.T) {
	c := ctx.Background()
	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}
	updateErr := errors.New("write failed")

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId: 1,
		Owner:  seller,
	}, nil)
	m.registry.On("TransferFrom", mock.Anything, seller, engineAddress, domain.ItemId(1)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.Anything).Return(updateErr)
	m.registry.On("TransferFrom", mock.Anything, engineAddress, seller, domain.ItemId(1)).Return(nil)

	require.ErrorIs(t, im.ListItem(c, seller, id, 100), updateErr)

	// the unrecorded listing leaves nothing in escrow
	m.registry.AssertCalled(t, "TransferFrom", mock.Anything, engineAddress, seller, domain.ItemId(1))
}

func TestListItemOnAuctionUpdateFailureReturnsAsset(t *testing.T) {
	c := ctx.Background()
	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}
	updateErr := errors.New("write failed")

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId: 1,
		Owner:  seller,
	}, nil)
	m.registry.On("TransferFrom", mock.Anything, seller, engineAddress, domain.ItemId(1)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.Anything).Return(updateErr)
	m.registry.On("TransferFrom", mock.Anything, engineAddress, seller, domain.ItemId(1)).Return(nil)

	require.ErrorIs(t, im.ListItemOnAuction(c, seller, id, 100), updateErr)

	m.registry.AssertCalled(t, "TransferFrom", mock.Anything, engineAddress, seller, domain.ItemId(1))
}

func TestBuyItem(t *testing.T) {
	c := ctx.Background()
	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}
	price := domain.TokenAmount(500)

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:       1,
		Owner:        seller,
		InitialPrice: price,
		OnSale:       true,
	}, nil)
	m.ledger.On("TransferFrom", mock.Anything, buyer, engineAddress, price).Return(nil)
	m.ledger.On("Transfer", mock.Anything, seller, price).Return(nil)
	m.registry.On("TransferFrom", mock.Anything, engineAddress, buyer, domain.ItemId(1)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(p marketplace.ItemPatchable) bool {
		return p.Owner != nil && *p.Owner == buyer &&
			p.OnSale != nil && !*p.OnSale
	})).Return(nil)
	m.saleRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *marketplace.Sale) bool {
		return s.Seller == seller && s.Buyer == buyer &&
			s.Price == price && s.Kind == marketplace.SaleKindFixedPrice
	})).Return(nil)
	m.saleEmitter.On("EmitSold", mock.Anything, mock.Anything).Return()

	require.NoError(t, im.BuyItem(c, buyer, id))

	// the seller receives exactly the listed price
	m.ledger.AssertCalled(t, "Transfer", mock.Anything, seller, price)
	m.saleEmitter.AssertCalled(t, "EmitSold", mock.Anything, mock.Anything)
}

func TestBuyItemRejections(t *testing.T) {
	c := ctx.Background()
	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId: 1,
		Owner:  seller,
	}, nil).Once()
	require.ErrorIs(t, im.BuyItem(c, buyer, id), domain.ErrNotOnSale)

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId: 1,
		Owner:  seller,
		OnSale: true,
	}, nil).Once()
	require.ErrorIs(t, im.BuyItem(c, seller, id), domain.ErrSelfPurchase)

	m.ledger.AssertNotCalled(t, "TransferFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBuyItemPayoutFailureRefundsBuyer(t *testing.T) {
	c := ctx.Background()
	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}
	price := domain.TokenAmount(500)
	payoutErr := errors.New("payout failed")

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:       1,
		Owner:        seller,
		InitialPrice: price,
		OnSale:       true,
	}, nil)
	m.ledger.On("TransferFrom", mock.Anything, buyer, engineAddress, price).Return(nil)
	m.ledger.On("Transfer", mock.Anything, seller, price).Return(payoutErr)
	m.ledger.On("Transfer", mock.Anything, buyer, price).Return(nil)

	require.ErrorIs(t, im.BuyItem(c, buyer, id), payoutErr)

	m.ledger.AssertCalled(t, "Transfer", mock.Anything, buyer, price)
	m.registry.AssertNotCalled(t, "TransferFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.itemRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	m.saleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCancel(t *testing.T) {
	c := ctx.Background()
	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId: 1,
		Owner:  seller,
		OnSale: true,
	}, nil)
	m.registry.On("TransferFrom", mock.Anything, engineAddress, seller, domain.ItemId(1)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(p marketplace.ItemPatchable) bool {
		return p.OnSale != nil && !*p.OnSale
	})).Return(nil)

	require.ErrorIs(t, im.Cancel(c, buyer, id), domain.ErrNotOwner)
	require.NoError(t, im.Cancel(c, seller, id))
}

func TestListItemOnAuctionSnapshotsDuration(t *testing.T) {
	c := ctx.Background()
	now := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, now)

	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}
	wantEnd := now.Add(259200 * time.Second)

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:     1,
		Owner:      seller,
		CurrentBid: 42,
		LastBidder: bidder,
	}, nil)
	m.registry.On("TransferFrom", mock.Anything, seller, engineAddress, domain.ItemId(1)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(p marketplace.ItemPatchable) bool {
		return p.IsOnAuction != nil && *p.IsOnAuction &&
			p.AuctionEnd != nil && p.AuctionEnd.Equal(wantEnd) &&
			p.CurrentBid != nil && *p.CurrentBid == 0 &&
			p.LastBidder != nil && *p.LastBidder == domain.EmptyAddress &&
			p.NumberOfBids != nil && *p.NumberOfBids == 0
	})).Return(nil)

	require.NoError(t, im.ListItemOnAuction(c, seller, id, 100))

	// changing the duration now must not move the already computed end,
	// the next auction picks it up instead
	m.accessControl.On("HasRole", mock.Anything, admin, accesscontrol.RoleAdmin).Return(true, nil)
	require.NoError(t, im.ChangeAuctionSettings(c, admin, marketplace.AuctionSettings{
		AuctionDuration:     60,
		MinimalNumberOfBids: 1,
	}))
	m.itemRepo.AssertNumberOfCalls(t, "Update", 1)
}

func TestMakeBid(t *testing.T) {
	c := ctx.Background()
	now := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, now)

	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:       1,
		Owner:        seller,
		OnSale:       true,
		IsOnAuction:  true,
		CurrentBid:   0,
		LastBidder:   domain.EmptyAddress,
		AuctionEnd:   now.Add(time.Hour),
		InitialPrice: 100,
	}, nil)
	m.ledger.On("TransferFrom", mock.Anything, bidder, engineAddress, domain.TokenAmount(150)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(p marketplace.ItemPatchable) bool {
		return p.CurrentBid != nil && *p.CurrentBid == 150 &&
			p.LastBidder != nil && *p.LastBidder == bidder &&
			p.NumberOfBids != nil && *p.NumberOfBids == 1
	})).Return(nil)

	require.NoError(t, im.MakeBid(c, bidder, id, 150))

	// the opening bid has nobody to refund
	m.ledger.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestMakeBidOutbidRefundsPrevious(t *testing.T) {
	c := ctx.Background()
	now := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, now)

	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:       1,
		Owner:        seller,
		OnSale:       true,
		IsOnAuction:  true,
		CurrentBid:   150,
		LastBidder:   bidder,
		NumberOfBids: 1,
		AuctionEnd:   now.Add(time.Hour),
	}, nil)
	m.ledger.On("TransferFrom", mock.Anything, otherBidder, engineAddress, domain.TokenAmount(200)).Return(nil)
	m.ledger.On("Transfer", mock.Anything, bidder, domain.TokenAmount(150)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(p marketplace.ItemPatchable) bool {
		return p.CurrentBid != nil && *p.CurrentBid == 200 &&
			p.LastBidder != nil && *p.LastBidder == otherBidder &&
			p.NumberOfBids != nil && *p.NumberOfBids == 2
	})).Return(nil)

	require.NoError(t, im.MakeBid(c, otherBidder, id, 200))

	// the displaced bidder gets back exactly what was escrowed
	m.ledger.AssertCalled(t, "Transfer", mock.Anything, bidder, domain.TokenAmount(150))
}

func TestMakeBidRejections(t *testing.T) {
	c := ctx.Background()
	now := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, now)

	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId: 1,
		Owner:  seller,
		OnSale: true,
	}, nil).Once()
	require.ErrorIs(t, im.MakeBid(c, bidder, id, 150), domain.ErrNotOnAuction)

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:      1,
		Owner:       seller,
		OnSale:      true,
		IsOnAuction: true,
		AuctionEnd:  now,
	}, nil).Once()
	require.ErrorIs(t, im.MakeBid(c, bidder, id, 150), domain.ErrAuctionExpired)

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:      1,
		Owner:       seller,
		OnSale:      true,
		IsOnAuction: true,
		CurrentBid:  150,
		LastBidder:  bidder,
		AuctionEnd:  now.Add(time.Hour),
	}, nil).Once()
	require.ErrorIs(t, im.MakeBid(c, otherBidder, id, 150), domain.ErrBidTooLow)

	m.ledger.AssertNotCalled(t, "TransferFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMakeBidRefundFailureRejectsBid(t *testing.T) {
	c := ctx.Background()
	now := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, now)

	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:       1,
		Owner:        seller,
		OnSale:       true,
		IsOnAuction:  true,
		CurrentBid:   150,
		LastBidder:   bidder,
		NumberOfBids: 1,
		AuctionEnd:   now.Add(time.Hour),
	}, nil)
	m.ledger.On("TransferFrom", mock.Anything, otherBidder, engineAddress, domain.TokenAmount(200)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(p marketplace.ItemPatchable) bool {
		return p.CurrentBid != nil && *p.CurrentBid == 200
	})).Return(nil).Once()
	m.ledger.On("Transfer", mock.Anything, bidder, domain.TokenAmount(150)).Return(errors.New("refund failed"))
	m.itemRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(p marketplace.ItemPatchable) bool {
		return p.CurrentBid != nil && *p.CurrentBid == 150 &&
			p.LastBidder != nil && *p.LastBidder == bidder &&
			p.NumberOfBids != nil && *p.NumberOfBids == 1
	})).Return(nil).Once()
	m.ledger.On("Transfer", mock.Anything, otherBidder, domain.TokenAmount(200)).Return(nil)

	require.ErrorIs(t, im.MakeBid(c, otherBidder, id, 200), domain.ErrRefundFailure)

	// the standing bid is restored and the rejected escrow unwound
	m.itemRepo.AssertNumberOfCalls(t, "Update", 2)
	m.ledger.AssertCalled(t, "Transfer", mock.Anything, otherBidder, domain.TokenAmount(200))
}

func TestMakeBidUpdateFailureRefundsBidder(t *testing.T) {
	c := ctx.Background()
	now := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, now)

	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}
	updateErr := errors.New("write failed")

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:       1,
		Owner:        seller,
		OnSale:       true,
		IsOnAuction:  true,
		CurrentBid:   150,
		LastBidder:   bidder,
		NumberOfBids: 1,
		AuctionEnd:   now.Add(time.Hour),
	}, nil)
	m.ledger.On("TransferFrom", mock.Anything, otherBidder, engineAddress, domain.TokenAmount(200)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.Anything).Return(updateErr)
	m.ledger.On("Transfer", mock.Anything, otherBidder, domain.TokenAmount(200)).Return(nil)

	require.ErrorIs(t, im.MakeBid(c, otherBidder, id, 200), updateErr)

	// the unrecorded escrow is given back, the standing bid is untouched
	m.ledger.AssertCalled(t, "Transfer", mock.Anything, otherBidder, domain.TokenAmount(200))
	m.ledger.AssertNotCalled(t, "Transfer", mock.Anything, bidder, domain.TokenAmount(150))
}

func TestFinishAuctionStillOpen(t *testing.T) {
	c := ctx.Background()
	now := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, now)

	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:      1,
		Owner:       seller,
		OnSale:      true,
		IsOnAuction: true,
		AuctionEnd:  now.Add(time.Minute),
	}, nil)

	require.ErrorIs(t, im.FinishAuction(c, seller, id), domain.ErrAuctionStillOpen)
}

func TestFinishAuctionSettles(t *testing.T) {
	c := ctx.Background()
	now := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, now)

	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:       1,
		Owner:        seller,
		OnSale:       true,
		IsOnAuction:  true,
		CurrentBid:   300,
		LastBidder:   bidder,
		NumberOfBids: 3,
		AuctionEnd:   now.Add(-time.Minute),
	}, nil)
	m.ledger.On("Transfer", mock.Anything, seller, domain.TokenAmount(300)).Return(nil)
	m.registry.On("TransferFrom", mock.Anything, engineAddress, bidder, domain.ItemId(1)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(p marketplace.ItemPatchable) bool {
		return p.Owner != nil && *p.Owner == bidder &&
			p.OnSale != nil && !*p.OnSale &&
			p.IsOnAuction != nil && !*p.IsOnAuction
	})).Return(nil)
	m.saleRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *marketplace.Sale) bool {
		return s.Seller == seller && s.Buyer == bidder &&
			s.Price == 300 && s.Kind == marketplace.SaleKindAuction
	})).Return(nil)
	m.saleEmitter.On("EmitSold", mock.Anything, mock.Anything).Return()

	require.NoError(t, im.FinishAuction(c, seller, id))

	m.ledger.AssertCalled(t, "Transfer", mock.Anything, seller, domain.TokenAmount(300))
	m.saleEmitter.AssertCalled(t, "EmitSold", mock.Anything, mock.Anything)
}

func TestFinishAuctionRetryAfterReleaseFailure(t *testing.T) {
	c := ctx.Background()
	now := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, now)

	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:       1,
		Owner:        seller,
		OnSale:       true,
		IsOnAuction:  true,
		CurrentBid:   300,
		LastBidder:   bidder,
		NumberOfBids: 3,
		AuctionEnd:   now.Add(-time.Minute),
	}, nil)
	m.registry.On("TransferFrom", mock.Anything, engineAddress, bidder, domain.ItemId(1)).Return(domain.ErrTransferNotApproved).Once()
	m.registry.On("TransferFrom", mock.Anything, engineAddress, bidder, domain.ItemId(1)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.Anything).Return(nil)
	m.ledger.On("Transfer", mock.Anything, seller, domain.TokenAmount(300)).Return(nil)
	m.saleRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.saleEmitter.On("EmitSold", mock.Anything, mock.Anything).Return()

	// a failed asset release leaves escrow untouched, nothing paid out
	require.ErrorIs(t, im.FinishAuction(c, seller, id), domain.ErrTransferNotApproved)
	m.ledger.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)

	// the retry settles and pays the seller exactly once
	require.NoError(t, im.FinishAuction(c, seller, id))
	m.ledger.AssertNumberOfCalls(t, "Transfer", 1)
}

func TestFinishAuctionPayoutFailure(t *testing.T) {
	c := ctx.Background()
	now := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, now)

	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}
	payoutErr := errors.New("payout failed")

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:       1,
		Owner:        seller,
		OnSale:       true,
		IsOnAuction:  true,
		CurrentBid:   300,
		LastBidder:   bidder,
		NumberOfBids: 3,
		AuctionEnd:   now.Add(-time.Minute),
	}, nil)
	m.registry.On("TransferFrom", mock.Anything, engineAddress, bidder, domain.ItemId(1)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(p marketplace.ItemPatchable) bool {
		return p.Owner != nil && *p.Owner == bidder &&
			p.IsOnAuction != nil && !*p.IsOnAuction
	})).Return(nil)
	m.ledger.On("Transfer", mock.Anything, seller, domain.TokenAmount(300)).Return(payoutErr)

	require.ErrorIs(t, im.FinishAuction(c, seller, id), payoutErr)

	// the settlement is already recorded, so a retry can never pay twice
	m.itemRepo.AssertNumberOfCalls(t, "Update", 1)
	m.saleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFinishAuctionRetryAfterReturnFailure(t *testing.T) {
	c := ctx.Background()
	now := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, now)

	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:       1,
		Owner:        seller,
		OnSale:       true,
		IsOnAuction:  true,
		CurrentBid:   200,
		LastBidder:   bidder,
		NumberOfBids: 2,
		AuctionEnd:   now.Add(-time.Minute),
	}, nil)
	m.registry.On("TransferFrom", mock.Anything, engineAddress, seller, domain.ItemId(1)).Return(domain.ErrTransferNotApproved).Once()
	m.registry.On("TransferFrom", mock.Anything, engineAddress, seller, domain.ItemId(1)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.Anything).Return(nil)
	m.ledger.On("Transfer", mock.Anything, bidder, domain.TokenAmount(200)).Return(nil)

	// a failed asset return leaves the standing bid escrowed
	require.ErrorIs(t, im.FinishAuction(c, seller, id), domain.ErrTransferNotApproved)
	m.ledger.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)

	// the retry refunds the bidder exactly once
	require.NoError(t, im.FinishAuction(c, seller, id))
	m.ledger.AssertNumberOfCalls(t, "Transfer", 1)
}

func TestFinishAuctionNotEnoughBids(t *testing.T) {
	c := ctx.Background()
	now := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, now)

	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:       1,
		Owner:        seller,
		OnSale:       true,
		IsOnAuction:  true,
		CurrentBid:   200,
		LastBidder:   bidder,
		NumberOfBids: 2,
		AuctionEnd:   now.Add(-time.Minute),
	}, nil)
	m.ledger.On("Transfer", mock.Anything, bidder, domain.TokenAmount(200)).Return(nil)
	m.registry.On("TransferFrom", mock.Anything, engineAddress, seller, domain.ItemId(1)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(p marketplace.ItemPatchable) bool {
		return p.Owner == nil &&
			p.OnSale != nil && !*p.OnSale &&
			p.IsOnAuction != nil && !*p.IsOnAuction
	})).Return(nil)

	require.NoError(t, im.FinishAuction(c, seller, id))

	// the standing bid goes back and no sale is recorded
	m.ledger.AssertCalled(t, "Transfer", mock.Anything, bidder, domain.TokenAmount(200))
	m.saleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.saleEmitter.AssertNotCalled(t, "EmitSold", mock.Anything, mock.Anything)
}

func TestFinishAuctionNoBids(t *testing.T) {
	c := ctx.Background()
	now := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)
	fixClock(t, now)

	im, m := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	m.itemRepo.On("FindOne", mock.Anything, id).Return(&marketplace.Item{
		ItemId:      1,
		Owner:       seller,
		OnSale:      true,
		IsOnAuction: true,
		LastBidder:  domain.EmptyAddress,
		AuctionEnd:  now.Add(-time.Minute),
	}, nil)
	m.registry.On("TransferFrom", mock.Anything, engineAddress, seller, domain.ItemId(1)).Return(nil)
	m.itemRepo.On("Update", mock.Anything, id, mock.Anything).Return(nil)

	require.NoError(t, im.FinishAuction(c, seller, id))

	m.ledger.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangeAuctionSettings(t *testing.T) {
	c := ctx.Background()
	im, m := newTestEngine(c, defaultSettings())

	m.accessControl.On("HasRole", mock.Anything, buyer, accesscontrol.RoleAdmin).Return(false, nil)
	err := im.ChangeAuctionSettings(c, buyer, marketplace.AuctionSettings{
		AuctionDuration:     60,
		MinimalNumberOfBids: 1,
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	m.accessControl.On("HasRole", mock.Anything, admin, accesscontrol.RoleAdmin).Return(true, nil)
	err = im.ChangeAuctionSettings(c, admin, marketplace.AuctionSettings{
		AuctionDuration:     0,
		MinimalNumberOfBids: 1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidParameter)

	want := marketplace.AuctionSettings{
		AuctionDuration:     600,
		MinimalNumberOfBids: 1,
	}
	require.NoError(t, im.ChangeAuctionSettings(c, admin, want))
	require.Equal(t, want, im.GetAuctionSettings(c))
	m.settingsRepo.AssertCalled(t, "Upsert", mock.Anything, want)
}

func TestItemBusy(t *testing.T) {
	c := ctx.Background()
	im, _ := newTestEngine(c, defaultSettings())
	id := marketplace.ItemId{ItemId: 1}

	require.True(t, im.tryLockItem(id.ItemId))
	defer im.unlockItem(id.ItemId)

	require.ErrorIs(t, im.BuyItem(c, buyer, id), domain.ErrItemBusy)
	require.ErrorIs(t, im.MakeBid(c, bidder, id, 100), domain.ErrItemBusy)
	require.ErrorIs(t, im.FinishAuction(c, seller, id), domain.ErrItemBusy)
}
