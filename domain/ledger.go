package domain

import (
	"github.com/Protivsporta/NFTMarketplace/base/ctx"
)

// PaymentLedger is the fungible payment token capability. The engine
// orchestrates transfers through it but never assumes success; every call
// site branches on the returned error.
//
// TransferFrom moves tokens between third parties and requires `from` to have
// approved the engine beforehand. Transfer spends from the engine's own
// custody account.
type PaymentLedger interface {
	TransferFrom(c ctx.Ctx, from, to Address, amount TokenAmount) error
	Transfer(c ctx.Ctx, to Address, amount TokenAmount) error
	BalanceOf(c ctx.Ctx, who Address) (TokenAmount, error)
}
