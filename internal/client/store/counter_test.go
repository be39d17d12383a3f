package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceCounter_SequentialPerPeriod(t *testing.T) {
	c := NewInvoiceCounter(setupDB(t))
	ctx := context.Background()

	for want := int64(0); want < 3; want++ {
		n, err := c.Next(ctx, "2021-03")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	// A different period starts over.
	n, err := c.Next(ctx, "2021-04")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = c.Next(ctx, "2021-03")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestInvoiceCounter_AdvanceOnlyMovesForward(t *testing.T) {
	c := NewInvoiceCounter(setupDB(t))
	ctx := context.Background()

	require.NoError(t, c.Advance(ctx, "2021-03", 7))
	n, err := c.Next(ctx, "2021-03")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	// An advance below the current value is ignored.
	require.NoError(t, c.Advance(ctx, "2021-03", 2))
	n, err = c.Next(ctx, "2021-03")
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
}
