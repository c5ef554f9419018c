package accesscontrol

import (
	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/domain"
)

type Role string

const (
	RoleAdmin Role = "admin"
)

// Assignment binds a role to an address. The engine never mutates the table;
// assignments are seeded at deployment and managed out of band.
type Assignment struct {
	Address domain.Address `json:"address" bson:"address"`
	Role    Role           `json:"role" bson:"role"`
	Name    string         `json:"name" bson:"name"`
}

type Repo interface {
	FindOne(c ctx.Ctx, address domain.Address, role Role) (*Assignment, error)
	FindAll(c ctx.Ctx, role Role) ([]*Assignment, error)
	Create(c ctx.Ctx, value Assignment) error
	Delete(c ctx.Ctx, address domain.Address, role Role) error
}

type UseCase interface {
	HasRole(c ctx.Ctx, address domain.Address, role Role) (bool, error)
}
