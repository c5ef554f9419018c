package contract

import (
	"math/big"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	baseabi "github.com/Protivsporta/NFTMarketplace/base/abi"
	bCtx "github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/base/log"
	"github.com/Protivsporta/NFTMarketplace/domain"
	"github.com/Protivsporta/NFTMarketplace/service/chain"
)

type Erc20Cfg struct {
	ChainService chain.Client
	ChainId      domain.ChainId
	Address      domain.Address
}

// Erc20 exposes the payment token contract as a domain.PaymentLedger
type Erc20 struct {
	chainService chain.Client
	chainId      int32
	address      common.Address
	abi          ethabi.ABI
}

func NewErc20(cfg *Erc20Cfg) *Erc20 {
	return &Erc20{
		chainService: cfg.ChainService,
		chainId:      int32(cfg.ChainId),
		address:      common.HexToAddress(string(cfg.Address)),
		abi:          baseabi.ERC20TokenABI,
	}
}

func (e *Erc20) TransferFrom(ctx bCtx.Ctx, from, to domain.Address, amount domain.TokenAmount) error {
	method := "transferFrom"
	_, err := e.chainService.Transact(ctx, e.chainId, e.address, e.abi, method, common.HexToAddress(string(from)), common.HexToAddress(string(to)), amount.ToBigInt())
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"from":   from,
			"to":     to,
			"amount": amount,
		}).Error("transferFrom failed")
		return domain.ErrPaymentNotApproved
	}
	return nil
}

func (e *Erc20) Transfer(ctx bCtx.Ctx, to domain.Address, amount domain.TokenAmount) error {
	method := "transfer"
	_, err := e.chainService.Transact(ctx, e.chainId, e.address, e.abi, method, common.HexToAddress(string(to)), amount.ToBigInt())
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"to":     to,
			"amount": amount,
		}).Error("transfer failed")
		return err
	}
	return nil
}

func (e *Erc20) BalanceOf(ctx bCtx.Ctx, who domain.Address) (domain.TokenAmount, error) {
	method := "balanceOf"
	unpacked, err := e.chainService.Call(ctx, e.chainId, e.address, nil, e.abi, method, common.HexToAddress(string(who)))
	if err != nil {
		return 0, err
	}
	bal := unpacked[0].(*big.Int)
	return domain.TokenAmount(bal.Uint64()), nil
}
