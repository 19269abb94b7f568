package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/procsim/model/process"
)

func TestService_ScannerHandOff(t *testing.T) {
	srv := New(DefaultConfig())
	scanner := process.Devices{Scanner: true}

	assert.NoError(t, srv.Request(5, scanner))

	err := srv.Request(6, scanner)
	var busy *BusyError
	assert.True(t, errors.As(err, &busy))
	assert.Equal(t, Scanner, busy.Kind)
	assert.Equal(t, process.PID(5), busy.Holder)
	assert.True(t, errors.Is(err, ErrBusy))

	assert.Equal(t, []Unit{{Kind: Scanner, Index: 0}}, srv.Release(5))
	assert.NoError(t, srv.Request(6, scanner))
	assert.Equal(t, []process.PID{6}, srv.Holders(Scanner))
}

func TestService_RequestIsIdempotent(t *testing.T) {
	srv := New(DefaultConfig())
	devices := process.Devices{Printer: true, Disk: true, Modem: true}

	assert.NoError(t, srv.Request(1, devices))
	before := srv.Snapshot()
	assert.NoError(t, srv.Request(1, devices))
	assert.Equal(t, before, srv.Snapshot())
	assert.Equal(t, []process.PID{1, process.NoPID}, srv.Holders(Printer))
	assert.Equal(t, []process.PID{1, process.NoPID, process.NoPID}, srv.Holders(Disk))
}

func TestService_RequestIsAtomic(t *testing.T) {
	srv := New(DefaultConfig())
	assert.NoError(t, srv.Request(1, process.Devices{Modem: true}))

	err := srv.Request(2, process.Devices{Printer: true, Scanner: true, Modem: true})
	assert.True(t, errors.Is(err, ErrBusy))
	assert.Empty(t, srv.Held(2))
	assert.Equal(t, []process.PID{process.NoPID}, srv.Holders(Scanner))
	assert.Equal(t, []process.PID{process.NoPID, process.NoPID}, srv.Holders(Printer))
}

func TestService_MutualExclusion(t *testing.T) {
	testCases := []struct {
		description string
		devices     process.Devices
		kind        Kind
		capacity    int
	}{
		{description: "scanner", devices: process.Devices{Scanner: true}, kind: Scanner, capacity: 1},
		{description: "modem", devices: process.Devices{Modem: true}, kind: Modem, capacity: 1},
		{description: "printers", devices: process.Devices{Printer: true}, kind: Printer, capacity: 2},
		{description: "disks", devices: process.Devices{Disk: true}, kind: Disk, capacity: 3},
	}

	for _, testCase := range testCases {
		srv := New(DefaultConfig())
		granted := 0
		for pid := process.PID(1); pid <= 5; pid++ {
			if err := srv.Request(pid, testCase.devices); err == nil {
				granted++
			}
		}
		assert.Equal(t, testCase.capacity, granted, testCase.description)
		for _, holder := range srv.Holders(testCase.kind) {
			assert.NotEqual(t, process.NoPID, holder, testCase.description)
		}
	}
}

func TestService_ReleaseUnit(t *testing.T) {
	srv := New(DefaultConfig())
	assert.NoError(t, srv.Request(1, process.Devices{Printer: true}))
	assert.NoError(t, srv.Request(2, process.Devices{Printer: true}))

	released, err := srv.ReleaseUnit(1, Printer, 1)
	assert.NoError(t, err)
	assert.False(t, released)

	released, err = srv.ReleaseUnit(2, Printer, 1)
	assert.NoError(t, err)
	assert.True(t, released)
	assert.Equal(t, []process.PID{1, process.NoPID}, srv.Holders(Printer))

	_, err = srv.ReleaseUnit(1, Printer, 2)
	assert.True(t, errors.Is(err, ErrInvalidIndex))
	_, err = srv.ReleaseUnit(1, Disk, -1)
	assert.True(t, errors.Is(err, ErrInvalidIndex))
}

func TestService_ReleaseAll(t *testing.T) {
	srv := New(DefaultConfig())
	assert.NoError(t, srv.Request(3, process.Devices{Printer: true, Scanner: true, Modem: true, Disk: true}))
	assert.Len(t, srv.Held(3), 4)
	assert.Len(t, srv.Release(3), 4)
	assert.Empty(t, srv.Held(3))
	assert.Empty(t, srv.Release(3))
}
