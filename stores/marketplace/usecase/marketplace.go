package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/base/log"
	"github.com/Protivsporta/NFTMarketplace/base/ptr"
	"github.com/Protivsporta/NFTMarketplace/domain"
	"github.com/Protivsporta/NFTMarketplace/domain/accesscontrol"
	"github.com/Protivsporta/NFTMarketplace/domain/marketplace"
)

// for test
var timeNow = time.Now

type MarketplaceUseCaseCfg struct {
	ItemRepo      marketplace.Repo
	SaleRepo      marketplace.SaleRepo
	SettingsRepo  marketplace.SettingsRepo
	Ledger        domain.PaymentLedger
	Registry      domain.AssetRegistry
	AccessControl accesscontrol.UseCase
	SaleEmitter   marketplace.SaleEmitter

	// EngineAddress is the custody account holding escrowed assets and bids
	EngineAddress domain.Address

	// defaults used until an administrator changes them
	InitialSettings marketplace.AuctionSettings
}

type impl struct {
	itemRepo      marketplace.Repo
	saleRepo      marketplace.SaleRepo
	settingsRepo  marketplace.SettingsRepo
	ledger        domain.PaymentLedger
	registry      domain.AssetRegistry
	accessControl accesscontrol.UseCase
	saleEmitter   marketplace.SaleEmitter
	engineAddress domain.Address

	settingsMu sync.RWMutex
	settings   marketplace.AuctionSettings

	// itemLocks serializes mutating operations per item. Re-entrant or
	// concurrent calls on the same item fail fast with ErrItemBusy instead
	// of interleaving escrow transfers.
	itemLocksMu sync.Mutex
	itemLocks   map[domain.ItemId]bool
}

func New(c ctx.Ctx, cfg *MarketplaceUseCaseCfg) marketplace.UseCase {
	im := &impl{
		itemRepo:      cfg.ItemRepo,
		saleRepo:      cfg.SaleRepo,
		settingsRepo:  cfg.SettingsRepo,
		ledger:        cfg.Ledger,
		registry:      cfg.Registry,
		accessControl: cfg.AccessControl,
		saleEmitter:   cfg.SaleEmitter,
		engineAddress: cfg.EngineAddress.ToLower(),
		settings:      cfg.InitialSettings,
		itemLocks:     map[domain.ItemId]bool{},
	}

	if stored, err := im.settingsRepo.Get(c); err == nil {
		im.settings = *stored
	} else if err == domain.ErrNotFound {
		if err := im.settingsRepo.Upsert(c, im.settings); err != nil {
			c.WithField("err", err).Warn("failed to persist initial auction settings")
		}
	} else {
		c.WithField("err", err).Warn("failed to load auction settings, using defaults")
	}

	return im
}

func (im *impl) tryLockItem(id domain.ItemId) bool {
	im.itemLocksMu.Lock()
	defer im.itemLocksMu.Unlock()
	if im.itemLocks[id] {
		return false
	}
	im.itemLocks[id] = true
	return true
}

func (im *impl) unlockItem(id domain.ItemId) {
	im.itemLocksMu.Lock()
	defer im.itemLocksMu.Unlock()
	delete(im.itemLocks, id)
}

func (im *impl) CreateItem(c ctx.Ctx, caller, recipient domain.Address) (*marketplace.Item, error) {
	recipient = recipient.ToLower()

	id, err := im.itemRepo.NextItemId(c)
	if err != nil {
		c.WithField("err", err).Error("itemRepo.NextItemId failed")
		return nil, err
	}

	if err := im.registry.MintTo(c, recipient, id); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"itemId":    id,
			"recipient": recipient,
		}).Error("registry.MintTo failed")
		return nil, err
	}

	now := timeNow()
	item := &marketplace.Item{
		ItemId:     id,
		Owner:      recipient,
		LastBidder: domain.EmptyAddress,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := im.itemRepo.Create(c, item); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": id,
		}).Error("itemRepo.Create failed")
		return nil, err
	}

	c.WithFields(log.Fields{
		"itemId":    id,
		"caller":    caller.ToLower(),
		"recipient": recipient,
	}).Info("item created")
	return item, nil
}

func (im *impl) GetItem(c ctx.Ctx, id marketplace.ItemId) (*marketplace.Item, error) {
	item, err := im.itemRepo.FindOne(c, id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (im *impl) FindAll(c ctx.Ctx, opts ...marketplace.FindAllOptionsFunc) ([]*marketplace.Item, error) {
	return im.itemRepo.FindAll(c, opts...)
}

func (im *impl) ListItem(c ctx.Ctx, caller domain.Address, id marketplace.ItemId, price domain.TokenAmount) error {
	if price == 0 {
		return domain.ErrInvalidParameter
	}
	if !im.tryLockItem(id.ItemId) {
		return domain.ErrItemBusy
	}
	defer im.unlockItem(id.ItemId)

	item, err := im.itemRepo.FindOne(c, id)
	if err != nil {
		return err
	}
	if !item.Owner.Equals(caller) {
		return domain.ErrNotOwner
	}
	if item.OnSale || item.IsOnAuction {
		return domain.ErrAlreadyListed
	}

	// escrow the asset, requires prior approval by the owner
	if err := im.registry.TransferFrom(c, item.Owner, im.engineAddress, id.ItemId); err != nil {
		return err
	}

	if err := im.itemRepo.Update(c, id, marketplace.ItemPatchable{
		InitialPrice: &price,
		OnSale:       ptr.Bool(true),
		IsOnAuction:  ptr.Bool(false),
		UpdatedAt:    ptr.Time(timeNow()),
	}); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": id.ItemId,
		}).Error("itemRepo.Update failed")
		// no listing was recorded, give the asset back
		if rerr := im.registry.TransferFrom(c, im.engineAddress, item.Owner, id.ItemId); rerr != nil {
			c.WithFields(log.Fields{
				"err":    rerr,
				"itemId": id.ItemId,
				"owner":  item.Owner,
			}).Error("failed to return escrowed asset after update failure")
		}
		return err
	}
	return nil
}

func (im *impl) BuyItem(c ctx.Ctx, caller domain.Address, id marketplace.ItemId) error {
	if !im.tryLockItem(id.ItemId) {
		return domain.ErrItemBusy
	}
	defer im.unlockItem(id.ItemId)

	item, err := im.itemRepo.FindOne(c, id)
	if err != nil {
		return err
	}
	if !item.OnSale || item.IsOnAuction {
		return domain.ErrNotOnSale
	}
	if item.Owner.Equals(caller) {
		return domain.ErrSelfPurchase
	}

	buyer := caller.ToLower()
	seller := item.Owner
	price := item.InitialPrice

	// route the payment through the engine account so a later failure can
	// still be unwound with a refund
	if err := im.ledger.TransferFrom(c, buyer, im.engineAddress, price); err != nil {
		return err
	}
	if err := im.ledger.Transfer(c, seller, price); err != nil {
		if rerr := im.ledger.Transfer(c, buyer, price); rerr != nil {
			c.WithFields(log.Fields{
				"err":    rerr,
				"itemId": id.ItemId,
				"buyer":  buyer,
			}).Error("failed to refund buyer after payout failure")
		}
		return err
	}
	if err := im.registry.TransferFrom(c, im.engineAddress, buyer, id.ItemId); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": id.ItemId,
			"buyer":  buyer,
		}).Error("failed to release escrowed asset to buyer")
		return err
	}

	if err := im.itemRepo.Update(c, id, marketplace.ItemPatchable{
		Owner:     &buyer,
		OnSale:    ptr.Bool(false),
		UpdatedAt: ptr.Time(timeNow()),
	}); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": id.ItemId,
		}).Error("itemRepo.Update failed")
		return err
	}

	im.recordSale(c, &marketplace.Sale{
		Id:     uuid.New().String(),
		ItemId: id.ItemId,
		Seller: seller,
		Buyer:  buyer,
		Price:  price,
		Kind:   marketplace.SaleKindFixedPrice,
		SoldAt: timeNow(),
	})
	return nil
}

func (im *impl) Cancel(c ctx.Ctx, caller domain.Address, id marketplace.ItemId) error {
	if !im.tryLockItem(id.ItemId) {
		return domain.ErrItemBusy
	}
	defer im.unlockItem(id.ItemId)

	item, err := im.itemRepo.FindOne(c, id)
	if err != nil {
		return err
	}
	if !item.Owner.Equals(caller) {
		return domain.ErrNotOwner
	}
	if !item.OnSale || item.IsOnAuction {
		return domain.ErrNotOnSale
	}

	if err := im.registry.TransferFrom(c, im.engineAddress, item.Owner, id.ItemId); err != nil {
		return err
	}

	if err := im.itemRepo.Update(c, id, marketplace.ItemPatchable{
		OnSale:    ptr.Bool(false),
		UpdatedAt: ptr.Time(timeNow()),
	}); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": id.ItemId,
		}).Error("itemRepo.Update failed")
		return err
	}
	return nil
}

func (im *impl) ListItemOnAuction(c ctx.Ctx, caller domain.Address, id marketplace.ItemId, startingPrice domain.TokenAmount) error {
	if startingPrice == 0 {
		return domain.ErrInvalidParameter
	}
	if !im.tryLockItem(id.ItemId) {
		return domain.ErrItemBusy
	}
	defer im.unlockItem(id.ItemId)

	item, err := im.itemRepo.FindOne(c, id)
	if err != nil {
		return err
	}
	if !item.Owner.Equals(caller) {
		return domain.ErrNotOwner
	}
	if item.OnSale || item.IsOnAuction {
		return domain.ErrAlreadyListed
	}

	if err := im.registry.TransferFrom(c, item.Owner, im.engineAddress, id.ItemId); err != nil {
		return err
	}

	// the duration is snapshotted here, later settings changes do not move
	// an already computed auctionEnd
	duration := im.GetAuctionSettings(c).AuctionDuration
	auctionEnd := timeNow().Add(time.Duration(duration) * time.Second)
	noBid := domain.TokenAmount(0)
	noBidder := domain.EmptyAddress

	if err := im.itemRepo.Update(c, id, marketplace.ItemPatchable{
		InitialPrice: &startingPrice,
		OnSale:       ptr.Bool(true),
		IsOnAuction:  ptr.Bool(true),
		CurrentBid:   &noBid,
		LastBidder:   &noBidder,
		NumberOfBids: ptr.Int32(0),
		AuctionEnd:   &auctionEnd,
		UpdatedAt:    ptr.Time(timeNow()),
	}); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": id.ItemId,
		}).Error("itemRepo.Update failed")
		// no auction was recorded, give the asset back
		if rerr := im.registry.TransferFrom(c, im.engineAddress, item.Owner, id.ItemId); rerr != nil {
			c.WithFields(log.Fields{
				"err":    rerr,
				"itemId": id.ItemId,
				"owner":  item.Owner,
			}).Error("failed to return escrowed asset after update failure")
		}
		return err
	}
	return nil
}

func (im *impl) MakeBid(c ctx.Ctx, caller domain.Address, id marketplace.ItemId, amount domain.TokenAmount) error {
	if !im.tryLockItem(id.ItemId) {
		return domain.ErrItemBusy
	}
	defer im.unlockItem(id.ItemId)

	item, err := im.itemRepo.FindOne(c, id)
	if err != nil {
		return err
	}
	if !item.IsOnAuction {
		return domain.ErrNotOnAuction
	}
	if !timeNow().Before(item.AuctionEnd) {
		return domain.ErrAuctionExpired
	}
	if amount <= item.CurrentBid {
		return domain.ErrBidTooLow
	}

	bidder := caller.ToLower()

	// escrow the new bid and record it before releasing the outdated one,
	// so a retried bid can never replay a refund that already went through
	if err := im.ledger.TransferFrom(c, bidder, im.engineAddress, amount); err != nil {
		return err
	}

	if err := im.itemRepo.Update(c, id, marketplace.ItemPatchable{
		CurrentBid:   &amount,
		LastBidder:   &bidder,
		NumberOfBids: ptr.Int32(item.NumberOfBids + 1),
		UpdatedAt:    ptr.Time(timeNow()),
	}); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": id.ItemId,
		}).Error("itemRepo.Update failed")
		// no bid was recorded, give the escrow back
		if rerr := im.ledger.Transfer(c, bidder, amount); rerr != nil {
			c.WithFields(log.Fields{
				"err":    rerr,
				"itemId": id.ItemId,
				"bidder": bidder,
			}).Error("failed to unwind rejected bid escrow")
		}
		return err
	}

	if item.CurrentBid > 0 {
		if err := im.ledger.Transfer(c, item.LastBidder, item.CurrentBid); err != nil {
			c.WithFields(log.Fields{
				"err":        err,
				"itemId":     id.ItemId,
				"lastBidder": item.LastBidder,
			}).Error("failed to refund previous bidder")
			// reject the bid: restore the standing record, then give the
			// new escrow back
			if rerr := im.itemRepo.Update(c, id, marketplace.ItemPatchable{
				CurrentBid:   &item.CurrentBid,
				LastBidder:   &item.LastBidder,
				NumberOfBids: ptr.Int32(item.NumberOfBids),
				UpdatedAt:    ptr.Time(timeNow()),
			}); rerr != nil {
				// the new bid stays recorded and escrowed, the refund is
				// still owed to the previous bidder
				c.WithFields(log.Fields{
					"err":    rerr,
					"itemId": id.ItemId,
				}).Error("failed to restore bid record")
				return domain.ErrRefundFailure
			}
			if rerr := im.ledger.Transfer(c, bidder, amount); rerr != nil {
				c.WithFields(log.Fields{
					"err":    rerr,
					"itemId": id.ItemId,
					"bidder": bidder,
				}).Error("failed to unwind rejected bid escrow")
			}
			return domain.ErrRefundFailure
		}
	}
	return nil
}

func (im *impl) FinishAuction(c ctx.Ctx, caller domain.Address, id marketplace.ItemId) error {
	if !im.tryLockItem(id.ItemId) {
		return domain.ErrItemBusy
	}
	defer im.unlockItem(id.ItemId)

	item, err := im.itemRepo.FindOne(c, id)
	if err != nil {
		return err
	}
	if !item.IsOnAuction {
		return domain.ErrNotOnAuction
	}
	if timeNow().Before(item.AuctionEnd) {
		return domain.ErrAuctionStillOpen
	}

	settings := im.GetAuctionSettings(c)
	if item.NumberOfBids >= settings.MinimalNumberOfBids {
		return im.settleAuction(c, item)
	}
	return im.returnUnsold(c, item)
}

// settleAuction completes the sale to the highest bidder
func (im *impl) settleAuction(c ctx.Ctx, item *marketplace.Item) error {
	id := item.ToId()
	seller := item.Owner
	winner := item.LastBidder

	// release the asset first, a failure here leaves escrow untouched and
	// the auction can be finished again
	if err := im.registry.TransferFrom(c, im.engineAddress, winner, item.ItemId); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": item.ItemId,
			"winner": winner,
		}).Error("failed to release escrowed asset to winner")
		return err
	}

	// close the record before the payout so a retried finish can never
	// replay the seller payment
	if err := im.itemRepo.Update(c, id, marketplace.ItemPatchable{
		Owner:       &winner,
		OnSale:      ptr.Bool(false),
		IsOnAuction: ptr.Bool(false),
		UpdatedAt:   ptr.Time(timeNow()),
	}); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": item.ItemId,
		}).Error("itemRepo.Update failed")
		return err
	}

	if err := im.ledger.Transfer(c, seller, item.CurrentBid); err != nil {
		// the sale stands, the payout stays in custody for recovery
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": item.ItemId,
			"seller": seller,
			"amount": item.CurrentBid,
		}).Error("failed to pay out seller, funds remain in custody")
		return err
	}

	im.recordSale(c, &marketplace.Sale{
		Id:     uuid.New().String(),
		ItemId: item.ItemId,
		Seller: seller,
		Buyer:  winner,
		Price:  item.CurrentBid,
		Kind:   marketplace.SaleKindAuction,
		SoldAt: timeNow(),
	})
	return nil
}

// returnUnsold hands the asset back to the seller and refunds the standing bid
func (im *impl) returnUnsold(c ctx.Ctx, item *marketplace.Item) error {
	id := item.ToId()

	// hand the asset back first, a failure here leaves escrow untouched and
	// the auction can be finished again
	if err := im.registry.TransferFrom(c, im.engineAddress, item.Owner, item.ItemId); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": item.ItemId,
			"owner":  item.Owner,
		}).Error("failed to return escrowed asset")
		return err
	}

	// close the record before the refund so a retried finish can never
	// refund the bidder twice
	if err := im.itemRepo.Update(c, id, marketplace.ItemPatchable{
		OnSale:      ptr.Bool(false),
		IsOnAuction: ptr.Bool(false),
		UpdatedAt:   ptr.Time(timeNow()),
	}); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": item.ItemId,
		}).Error("itemRepo.Update failed")
		return err
	}

	if item.CurrentBid > 0 {
		if err := im.ledger.Transfer(c, item.LastBidder, item.CurrentBid); err != nil {
			// the refund stays in custody for recovery
			c.WithFields(log.Fields{
				"err":        err,
				"itemId":     item.ItemId,
				"lastBidder": item.LastBidder,
				"amount":     item.CurrentBid,
			}).Error("failed to refund last bidder, funds remain in custody")
			return domain.ErrRefundFailure
		}
	}
	return nil
}

func (im *impl) GetAuctionSettings(c ctx.Ctx) marketplace.AuctionSettings {
	im.settingsMu.RLock()
	defer im.settingsMu.RUnlock()
	return im.settings
}

func (im *impl) ChangeAuctionSettings(c ctx.Ctx, caller domain.Address, settings marketplace.AuctionSettings) error {
	isAdmin, err := im.accessControl.HasRole(c, caller, accesscontrol.RoleAdmin)
	if err != nil {
		c.WithField("err", err).Error("accessControl.HasRole failed")
		return err
	}
	if !isAdmin {
		return domain.ErrUnauthorized
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := im.settingsRepo.Upsert(c, settings); err != nil {
		c.WithField("err", err).Error("settingsRepo.Upsert failed")
		return err
	}

	im.settingsMu.Lock()
	im.settings = settings
	im.settingsMu.Unlock()

	c.WithFields(log.Fields{
		"auctionDuration":     settings.AuctionDuration,
		"minimalNumberOfBids": settings.MinimalNumberOfBids,
	}).Info("auction settings changed")
	return nil
}

// recordSale is best effort, a sale that fails to record is logged but never
// unwound
func (im *impl) recordSale(c ctx.Ctx, sale *marketplace.Sale) {
	if err := im.saleRepo.Create(c, sale); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"itemId": sale.ItemId,
		}).Error("saleRepo.Create failed")
	}
	if im.saleEmitter != nil {
		im.saleEmitter.EmitSold(c, sale)
	}
}
