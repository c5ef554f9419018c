package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/domain"
	"github.com/Protivsporta/NFTMarketplace/domain/marketplace"
	"github.com/Protivsporta/NFTMarketplace/service/query"
)

// settingsId keys the single auction settings document
const settingsId = "auctionSettings"

type settingsImpl struct {
	q query.Mongo
}

func NewSettings(q query.Mongo) marketplace.SettingsRepo {
	return &settingsImpl{q}
}

func (im *settingsImpl) Get(c ctx.Ctx) (*marketplace.AuctionSettings, error) {
	res := &marketplace.AuctionSettings{}
	if err := im.q.FindOne(c, domain.TableSettings, bson.M{"_id": settingsId}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *settingsImpl) Upsert(c ctx.Ctx, settings marketplace.AuctionSettings) error {
	update := bson.M{
		"_id":                 settingsId,
		"auctionDuration":     settings.AuctionDuration,
		"minimalNumberOfBids": settings.MinimalNumberOfBids,
	}
	if err := im.q.Upsert(c, domain.TableSettings, bson.M{"_id": settingsId}, update); err != nil {
		c.WithField("err", err).Error("q.Upsert failed")
		return err
	}
	return nil
}
