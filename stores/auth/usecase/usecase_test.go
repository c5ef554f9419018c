package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Protivsporta/NFTMarketplace/base/ctx"
	"github.com/Protivsporta/NFTMarketplace/stores/auth/usecase"
)

func TestSignAndParseToken(t *testing.T) {
	ctx := ctx.Background()
	u := usecase.New("jwt-secret")
	tkn, err := u.SignToken(ctx, "0xAbC0000000000000000000000000000000000001")
	assert.NoError(t, err)
	assert.NotEmpty(t, tkn)
	ads, err := u.ParseToken(ctx, tkn)
	assert.NoError(t, err)
	assert.Equal(t, "0xabc0000000000000000000000000000000000001", ads)
}

func TestParseInvalidToken(t *testing.T) {
	ctx := ctx.Background()
	u := usecase.New("jwt-secret")
	_, err := u.ParseToken(ctx, "not-a-token")
	assert.Error(t, err)

	other := usecase.New("other-secret")
	tkn, err := other.SignToken(ctx, "0xabc0000000000000000000000000000000000001")
	assert.NoError(t, err)
	_, err = u.ParseToken(ctx, tkn)
	assert.Error(t, err)
}
