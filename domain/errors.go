package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	// lifecycle errors
	ErrNotOwner      = errors.New("caller is not the item owner")
	ErrNotOnSale     = errors.New("item is not on sale")
	ErrNotOnAuction  = errors.New("item is not on auction")
	ErrAlreadyListed = errors.New("item is already listed")
	ErrSelfPurchase  = errors.New("owner cannot buy own item")

	// auction errors
	ErrBidTooLow        = errors.New("bid must exceed the current bid")
	ErrAuctionStillOpen = errors.New("auction has not ended yet")
	ErrAuctionExpired   = errors.New("auction has already ended")

	// capability call failures
	ErrMintFailure         = errors.New("asset registry mint failed")
	ErrTransferNotApproved = errors.New("asset transfer is not approved")
	ErrPaymentNotApproved  = errors.New("payment transfer is not approved")
	ErrRefundFailure       = errors.New("refund of the previous bid failed")

	ErrUnauthorized     = errors.New("caller lacks the required role")
	ErrInvalidParameter = errors.New("zero or negative parameter")

	// ErrItemBusy means another operation on the same item is in flight.
	// Callers may retry; the engine never does.
	ErrItemBusy = errors.New("item operation in progress")
)
