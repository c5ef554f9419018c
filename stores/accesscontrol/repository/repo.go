package repository

import (
	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/base/database/mongoclient"
	"github.com/Protivsporta/NFTMarketplace/domain"
	"github.com/Protivsporta/NFTMarketplace/domain/accesscontrol"
	"github.com/Protivsporta/NFTMarketplace/service/query"
)

type impl struct {
	q query.Mongo
}

func New(q query.Mongo) accesscontrol.Repo {
	return &impl{q}
}

func (im *impl) FindOne(c ctx.Ctx, address domain.Address, role accesscontrol.Role) (*accesscontrol.Assignment, error) {
	qry, err := mongoclient.MakeBsonM(accesscontrol.Assignment{Address: address.ToLower(), Role: role})
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}

	res := &accesscontrol.Assignment{}
	if err := im.q.FindOne(c, domain.TableAdmins, qry, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) FindAll(c ctx.Ctx, role accesscontrol.Role) ([]*accesscontrol.Assignment, error) {
	qry, err := mongoclient.MakeBsonM(accesscontrol.Assignment{Role: role})
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}

	res := []*accesscontrol.Assignment{}
	if err := im.q.Search(c, domain.TableAdmins, 0, 0, "_id", qry, &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Create(c ctx.Ctx, value accesscontrol.Assignment) error {
	value.Address = value.Address.ToLower()
	if err := im.q.Insert(c, domain.TableAdmins, value); err != nil && err != query.ErrDuplicateKey {
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *impl) Delete(c ctx.Ctx, address domain.Address, role accesscontrol.Role) error {
	selector, err := mongoclient.MakeBsonM(accesscontrol.Assignment{Address: address.ToLower(), Role: role})
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return err
	}

	if err := im.q.Remove(c, domain.TableAdmins, selector); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.Remove failed")
		return err
	}
	return nil
}
