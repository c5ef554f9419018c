package domain

import (
	"math/big"
	"strings"

	"golang.org/x/xerrors"
)

type ChainId int32

type SortDir int8

const (
	SortDirAsc  SortDir = 1
	SortDirDesc SortDir = -1
)

type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerPtr() *Address {
	res := a.ToLower()
	return &res
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0 || a.Equals(EmptyAddress)
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

// ItemId is the sequential marketplace item identifier. It doubles as the
// token id of the wrapped asset in the registry.
type ItemId uint64

func (i ItemId) ToBigInt() *big.Int {
	return new(big.Int).SetUint64(uint64(i))
}

// TokenAmount is an amount of the payment token in its smallest unit.
type TokenAmount uint64

func (a TokenAmount) ToBigInt() *big.Int {
	return new(big.Int).SetUint64(uint64(a))
}

type TxHash string

type Table string

const (
	TableItems    Table = "marketplace_items"
	TableSales    Table = "marketplace_sales"
	TableSettings Table = "marketplace_settings"
	TableCounters Table = "counters"
	TableAdmins   Table = "admins"
)

func ParseItemId(s string) (ItemId, error) {
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || !id.IsUint64() {
		return 0, xerrors.Errorf("invalid item id %q", s)
	}
	return ItemId(id.Uint64()), nil
}
