package usecase

import (
	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/domain"
	"github.com/Protivsporta/NFTMarketplace/domain/accesscontrol"
)

type impl struct {
	repo accesscontrol.Repo
}

func New(repo accesscontrol.Repo) accesscontrol.UseCase {
	return &impl{repo}
}

func (im *impl) HasRole(c ctx.Ctx, address domain.Address, role accesscontrol.Role) (bool, error) {
	if res, err := im.repo.FindOne(c, address, role); err == domain.ErrNotFound {
		return false, nil
	} else if err != nil {
		c.WithField("err", err).Error("repo.FindOne failed")
		return false, err
	} else {
		return res != nil, nil
	}
}
