package engine

import (
	"errors"
	"fmt"
	"math"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedArithmetic(t *testing.T) {
	v, err := checkedMul(100, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), v)

	_, err = checkedMul(math.MaxUint64, 2)
	assert.ErrorIs(t, err, ErrMathOverflow)

	v, err = checkedAdd(math.MaxUint64-1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), v)

	_, err = checkedAdd(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrMathOverflow)

	_, err = checkedSub(0, 1)
	assert.ErrorIs(t, err, ErrMathUnderflow)

	assert.Equal(t, uint64(7), maxOf([]uint64{2, 7, 3}))
	assert.Equal(t, uint64(0), maxOf(nil))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeBetClaimed, CodeOf(ErrBetClaimed))
	assert.Equal(t, CodeBetClaimed, CodeOf(fmt.Errorf("claim: %w", ErrBetClaimed)))
	assert.Equal(t, CodeMarketClosed, CodeOf(pkgerrors.Wrap(ErrMarketClosed, "close")))
	assert.Equal(t, Code(""), CodeOf(errors.New("boom")))
	assert.Equal(t, Code(""), CodeOf(nil))
}

func TestErrorIs_ComparesCode(t *testing.T) {
	withContext := &Error{Code: CodeInvalidBetAmount, Message: "amount 500 above max stake 100"}
	assert.ErrorIs(t, withContext, ErrInvalidBetAmount)
	assert.NotErrorIs(t, withContext, ErrInvalidTeamIndex)
	assert.Equal(t, "InvalidBetAmount: amount 500 above max stake 100", withContext.Error())
}
