package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/base/database/mongoclient"
	"github.com/Protivsporta/NFTMarketplace/domain"
	"github.com/Protivsporta/NFTMarketplace/domain/marketplace"
	"github.com/Protivsporta/NFTMarketplace/service/query"
)

// itemIdCounter is the counter document allocating item ids
const itemIdCounter = "itemId"

type itemImpl struct {
	q query.Mongo
}

func NewItem(q query.Mongo) marketplace.Repo {
	return &itemImpl{q}
}

func (im *itemImpl) FindOne(c ctx.Ctx, id marketplace.ItemId) (*marketplace.Item, error) {
	qry, err := mongoclient.MakeBsonM(id)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}

	res := &marketplace.Item{}
	if err := im.q.FindOne(c, domain.TableItems, qry, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *itemImpl) FindAll(c ctx.Ctx, optFns ...marketplace.FindAllOptionsFunc) ([]*marketplace.Item, error) {
	opts, err := marketplace.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("marketplace.GetFindAllOptions failed")
		return nil, err
	}

	offset := int(0)

	limit := int(0)

	sort := "_id"

	if opts.Offset != nil {
		offset = int(*opts.Offset)
	}

	if opts.Limit != nil {
		limit = int(*opts.Limit)
	}

	if opts.SortBy != nil && opts.SortDir != nil {
		sort = *opts.SortBy
		if *opts.SortDir == domain.SortDirDesc {
			sort = "-" + sort
		}
	}

	res := []*marketplace.Item{}

	if qry, err := mongoclient.MakeBsonM(opts); err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	} else if err := im.q.Search(c, domain.TableItems, offset, limit, sort, qry, &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	} else {
		return res, nil
	}
}

func (im *itemImpl) Count(c ctx.Ctx, optFns ...marketplace.FindAllOptionsFunc) (int, error) {
	opts, err := marketplace.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("marketplace.GetFindAllOptions failed")
		return 0, err
	}

	if qry, err := mongoclient.MakeBsonM(opts); err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return 0, err
	} else if count, err := im.q.Count(c, domain.TableItems, qry); err != nil {
		c.WithField("err", err).Error("q.Count failed")
		return 0, err
	} else {
		return count, nil
	}
}

func (im *itemImpl) Create(c ctx.Ctx, item *marketplace.Item) error {
	if err := im.q.Insert(c, domain.TableItems, item); err != nil {
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *itemImpl) Update(c ctx.Ctx, id marketplace.ItemId, patchable marketplace.ItemPatchable) error {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return err
	}

	updater, err := mongoclient.MakeBsonM(patchable)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return err
	}

	if err := im.q.Patch(c, domain.TableItems, selector, updater); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.Patch failed")
		return err
	}
	return nil
}

func (im *itemImpl) NextItemId(c ctx.Ctx) (domain.ItemId, error) {
	counter := struct {
		Name string `bson:"name"`
		Seq  uint64 `bson:"seq"`
	}{}

	if err := im.q.Increment(c, domain.TableCounters, bson.M{"name": itemIdCounter}, &counter, "seq", 1); err != nil {
		c.WithField("err", err).Error("q.Increment failed")
		return 0, err
	}
	return domain.ItemId(counter.Seq), nil
}
