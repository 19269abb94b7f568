package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/procsim/model/process"
)

func TestService_FirstFit(t *testing.T) {
	srv := New(DefaultConfig())

	offset, err := srv.Allocate(1, 100, false)
	assert.NoError(t, err)
	assert.Equal(t, 64, offset)

	offset, err = srv.Allocate(2, 50, false)
	assert.NoError(t, err)
	assert.Equal(t, 164, offset)

	assert.Equal(t, 100, srv.Free(1))

	offset, err = srv.Allocate(3, 80, false)
	assert.NoError(t, err)
	assert.Equal(t, 64, offset)
	assert.Equal(t, process.NoPID, srv.Owner(144))
	assert.Equal(t, process.PID(2), srv.Owner(164))
}

func TestService_Allocate(t *testing.T) {
	testCases := []struct {
		description string
		size        int
		realTime    bool
		prefill     int
		expectOff   int
		expectErr   error
	}{
		{description: "real-time region start", size: 10, realTime: true, expectOff: 0},
		{description: "real-time whole region", size: 64, realTime: true, expectOff: 0},
		{description: "real-time too large", size: 65, realTime: true, expectErr: ErrRequestTooLarge},
		{description: "general too large", size: 961, expectErr: ErrRequestTooLarge},
		{description: "general whole region", size: 960, expectOff: 64},
		{description: "zero size", size: 0, expectErr: ErrInvalidSize},
		{description: "general exhausted", size: 20, prefill: 950, expectErr: ErrOutOfMemory},
		{description: "general after prefill", size: 10, prefill: 950, expectOff: 1014},
	}

	for _, testCase := range testCases {
		srv := New(DefaultConfig())
		if testCase.prefill > 0 {
			_, err := srv.Allocate(99, testCase.prefill, false)
			assert.NoError(t, err, testCase.description)
		}
		offset, err := srv.Allocate(1, testCase.size, testCase.realTime)
		if testCase.expectErr != nil {
			assert.True(t, errors.Is(err, testCase.expectErr), testCase.description)
			assert.Equal(t, 0, srv.Owned(1), testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expectOff, offset, testCase.description)
		assert.Equal(t, testCase.size, srv.Owned(1), testCase.description)
	}
}

func TestService_RunResetsOnOccupiedBlock(t *testing.T) {
	srv := New(Config{TotalBlocks: 20, RealTimeBlocks: 4})
	_, _ = srv.Allocate(1, 3, false)
	_, _ = srv.Allocate(2, 2, false)
	_, _ = srv.Allocate(3, 3, false)
	srv.Free(1)
	srv.Free(3)

	// holes: [4,7) and [9,20), pid 2 sits on [7,9)
	offset, err := srv.Allocate(4, 4, false)
	assert.NoError(t, err)
	assert.Equal(t, 9, offset)

	offset, err = srv.Allocate(5, 3, false)
	assert.NoError(t, err)
	assert.Equal(t, 4, offset)
}

func TestService_FreeIsIdempotent(t *testing.T) {
	srv := New(DefaultConfig())
	_, _ = srv.Allocate(7, 5, true)
	assert.Equal(t, 5, srv.Free(7))
	assert.Equal(t, 0, srv.Free(7))
	assert.Equal(t, 0, srv.Owned(7))

	usage := srv.Usage()
	assert.Len(t, usage, 2)
	assert.Equal(t, 64, usage[0].Free)
	assert.Equal(t, 960, usage[1].Free)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{TotalBlocks: 10, RealTimeBlocks: 10}.Validate())
	assert.Error(t, Config{}.Validate())
}
