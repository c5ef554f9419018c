package contract

import (
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	baseabi "github.com/Protivsporta/NFTMarketplace/base/abi"
	bCtx "github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/base/log"
	"github.com/Protivsporta/NFTMarketplace/domain"
	"github.com/Protivsporta/NFTMarketplace/service/chain"
)

type Erc721Cfg struct {
	ChainService chain.Client
	ChainId      domain.ChainId
	Address      domain.Address
}

// Erc721 exposes the nft collection contract as a domain.AssetRegistry
type Erc721 struct {
	chainService chain.Client
	chainId      int32
	address      common.Address
	abi          ethabi.ABI
}

func NewErc721(cfg *Erc721Cfg) *Erc721 {
	return &Erc721{
		chainService: cfg.ChainService,
		chainId:      int32(cfg.ChainId),
		address:      common.HexToAddress(string(cfg.Address)),
		abi:          baseabi.ERC721TokenABI,
	}
}

func (e *Erc721) MintTo(ctx bCtx.Ctx, recipient domain.Address, assetId domain.ItemId) error {
	method := "mint"
	_, err := e.chainService.Transact(ctx, e.chainId, e.address, e.abi, method, common.HexToAddress(string(recipient)), assetId.ToBigInt())
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"recipient": recipient,
			"assetId":   assetId,
		}).Error("mint failed")
		return domain.ErrMintFailure
	}
	return nil
}

func (e *Erc721) TransferFrom(ctx bCtx.Ctx, from, to domain.Address, assetId domain.ItemId) error {
	method := "transferFrom"
	_, err := e.chainService.Transact(ctx, e.chainId, e.address, e.abi, method, common.HexToAddress(string(from)), common.HexToAddress(string(to)), assetId.ToBigInt())
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"from":    from,
			"to":      to,
			"assetId": assetId,
		}).Error("transferFrom failed")
		return domain.ErrTransferNotApproved
	}
	return nil
}

func (e *Erc721) OwnerOf(ctx bCtx.Ctx, assetId domain.ItemId) (domain.Address, error) {
	method := "ownerOf"
	unpacked, err := e.chainService.Call(ctx, e.chainId, e.address, nil, e.abi, method, assetId.ToBigInt())
	if err != nil {
		return domain.EmptyAddress, err
	}
	return domain.Address(unpacked[0].(common.Address).Hex()).ToLower(), nil
}
