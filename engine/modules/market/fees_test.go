package market

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitReferenceCase(t *testing.T) {
	// 100 at 5% platform / 10% royalty: the canonical settlement case.
	platform, creator, remainder := Split(100, 5, 10)
	require.Equal(t, uint64(5), platform)
	require.Equal(t, uint64(10), creator)
	require.Equal(t, uint64(85), remainder)
}

func TestSplitFloorsBothCuts(t *testing.T) {
	// 99 * 5 / 100 = 4.95 → 4, 99 * 10 / 100 = 9.9 → 9.
	platform, creator, remainder := Split(99, 5, 10)
	require.Equal(t, uint64(4), platform)
	require.Equal(t, uint64(9), creator)
	require.Equal(t, uint64(86), remainder)
}

// The remainder must absorb all rounding: no value created or destroyed.
func TestSplitConservesValue(t *testing.T) {
	prices := []uint64{0, 1, 7, 99, 100, 101, 12345, 1 << 40, 1<<63 + 12345}
	for _, price := range prices {
		for fee := uint64(0); fee <= 80; fee += 7 {
			for royalty := uint64(0); royalty <= 20; royalty++ {
				platform, creator, remainder := Split(price, fee, royalty)
				require.Equal(t, price, platform+creator+remainder,
					"price %d fee %d royalty %d", price, fee, royalty)
			}
		}
	}
}

func TestSplitZeroPercents(t *testing.T) {
	platform, creator, remainder := Split(1000, 0, 0)
	require.Zero(t, platform)
	require.Zero(t, creator)
	require.Equal(t, uint64(1000), remainder)
}

func TestSplitLargePriceNoOverflow(t *testing.T) {
	// price * percent would wrap in 64 bits; the 128-bit intermediate
	// must keep the cut exact.
	price := uint64(1) << 62
	platform, _, _ := Split(price, 50, 0)
	require.Equal(t, price/2, platform)
}
