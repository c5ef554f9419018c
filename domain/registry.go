package domain

import (
	"github.com/Protivsporta/NFTMarketplace/base/ctx"
)

// AssetRegistry is the non-fungible asset capability backing marketplace
// items. MintTo creates the asset for a freshly allocated item id;
// TransferFrom moves custody and requires the current holder's approval
// unless the engine itself is the holder.
type AssetRegistry interface {
	MintTo(c ctx.Ctx, recipient Address, assetId ItemId) error
	TransferFrom(c ctx.Ctx, from, to Address, assetId ItemId) error
	OwnerOf(c ctx.Ctx, assetId ItemId) (Address, error)
}
