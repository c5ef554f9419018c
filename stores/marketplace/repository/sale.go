package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/base/log"
	"github.com/Protivsporta/NFTMarketplace/domain"
	"github.com/Protivsporta/NFTMarketplace/domain/marketplace"
	"github.com/Protivsporta/NFTMarketplace/service/cache"
	"github.com/Protivsporta/NFTMarketplace/service/cache/provider"
	"github.com/Protivsporta/NFTMarketplace/service/cache/provider/compound"
	"github.com/Protivsporta/NFTMarketplace/service/cache/provider/primitive"
	redisCache "github.com/Protivsporta/NFTMarketplace/service/cache/provider/redis"
	"github.com/Protivsporta/NFTMarketplace/service/query"
	"github.com/Protivsporta/NFTMarketplace/service/redis"
)

type saleImpl struct {
	q         query.Mongo
	pageCache cache.Service
}

// NewSale creates the sale feed repo. Sales are append-only so pages are
// served through a short lived read-through cache.
func NewSale(q query.Mongo, redis redis.Service) marketplace.SaleRepo {
	cacheProviders := []provider.Provider{
		primitive.NewPrimitive("sales", 128),
	}

	if redis != nil {
		cacheProviders = append(cacheProviders, redisCache.NewRedis(redis))
	}

	return &saleImpl{
		q: q,
		pageCache: cache.New(cache.ServiceConfig{
			Ttl:   30 * time.Second,
			Pfx:   "sales",
			Cache: compound.NewCompound(cacheProviders),
		}),
	}
}

func (im *saleImpl) Create(c ctx.Ctx, sale *marketplace.Sale) error {
	if err := im.q.Insert(c, domain.TableSales, sale); err != nil {
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *saleImpl) FindAll(c ctx.Ctx, offset, limit int32) ([]*marketplace.Sale, error) {
	res := []*marketplace.Sale{}
	key := fmt.Sprintf("%d:%d", offset, limit)

	if err := im.pageCache.GetByFunc(c, key, &res, func() (interface{}, error) {
		page, err := im.findAll(c, offset, limit)
		if err != nil {
			return nil, err
		}
		return &page, nil
	}); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"offset": offset,
			"limit":  limit,
		}).Error("pageCache.GetByFunc failed")
		return nil, err
	}
	return res, nil
}

func (im *saleImpl) findAll(c ctx.Ctx, offset, limit int32) ([]*marketplace.Sale, error) {
	res := []*marketplace.Sale{}
	if err := im.q.Search(c, domain.TableSales, int(offset), int(limit), "-soldAt", bson.M{}, &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}
