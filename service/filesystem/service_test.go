package filesystem

import (
	"context"
	"embed"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	_ "github.com/viant/afs/embed"
	"github.com/viant/procsim/model/process"
)

//go:embed testdata/*
var testFS embed.FS

// directory knows pid 0 (real-time) and pid 1 (time-shared).
type directory map[process.PID]bool

func (d directory) Known(pid process.PID) bool {
	_, ok := d[pid]
	return ok
}

func (d directory) RealTime(pid process.PID) bool {
	return d[pid]
}

func newDirectory() directory {
	return directory{0: true, 1: false}
}

func TestService_Create(t *testing.T) {
	srv := New(6, newDirectory())
	assert.NoError(t, srv.Load([]*Segment{{Name: "A", Start: 1, Size: 2}}))

	testCases := []struct {
		description string
		pid         process.PID
		name        string
		size        int
		expectStart int
		expectErr   error
	}{
		{description: "first hole", pid: 1, name: "x", size: 1, expectStart: 0},
		{description: "skips short hole", pid: 1, name: "y", size: 2, expectStart: 3},
		{description: "duplicate", pid: 0, name: "x", size: 1, expectErr: ErrFileExists},
		{description: "no space", pid: 0, name: "z", size: 2, expectErr: ErrNoSpace},
		{description: "invalid size", pid: 0, name: "w", size: 0, expectErr: ErrInvalidSize},
		{description: "unknown process", pid: 9, name: "v", size: 1, expectErr: ErrUnknownProcess},
		{description: "last block", pid: 0, name: "u", size: 1, expectStart: 5},
	}
	for _, testCase := range testCases {
		file, err := srv.Create(testCase.pid, testCase.name, testCase.size)
		if testCase.expectErr != nil {
			assert.True(t, errors.Is(err, testCase.expectErr), testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expectStart, file.Start, testCase.description)
		assert.Equal(t, testCase.pid, file.Owner, testCase.description)
	}
	assert.Equal(t, []string{"x", "A", "A", "y", "y", "u"}, srv.DiskMap())
}

func TestService_Delete(t *testing.T) {
	srv := New(8, newDirectory())
	assert.NoError(t, srv.Load([]*Segment{{Name: "sys", Start: 0, Size: 2}}))
	_, err := srv.Create(1, "mine", 2)
	assert.NoError(t, err)
	_, err = srv.Create(0, "rt", 1)
	assert.NoError(t, err)

	assert.True(t, errors.Is(srv.Delete(1, "sys"), ErrPermissionDenied))
	assert.True(t, errors.Is(srv.Delete(1, "rt"), ErrPermissionDenied))
	assert.True(t, errors.Is(srv.Delete(1, "none"), ErrFileNotFound))
	assert.True(t, errors.Is(srv.Delete(7, "mine"), ErrUnknownProcess))
	assert.NoError(t, srv.Delete(1, "mine"))
	assert.NoError(t, srv.Delete(0, "sys"))
	assert.NoError(t, srv.Delete(0, "rt"))
	assert.Empty(t, srv.Files())
}

func TestService_Load(t *testing.T) {
	srv := New(5, newDirectory())
	assert.True(t, errors.Is(srv.Load([]*Segment{{Name: "A", Start: 4, Size: 2}}), ErrOutOfRange))
	assert.NoError(t, srv.Load([]*Segment{{Name: "A", Start: 0, Size: 2}}))
	assert.True(t, errors.Is(srv.Load([]*Segment{{Name: "B", Start: 1, Size: 1}}), ErrSegmentConflict))
	assert.True(t, errors.Is(srv.Load([]*Segment{{Name: "A", Start: 3, Size: 1}}), ErrFileExists))
}

func TestParse(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expectErr   string
	}{
		{description: "missing header", input: "# nothing\n", expectErr: "missing disk header"},
		{description: "short segments", input: "10\n2\nA, 0, 1\n", expectErr: "expected 2 segments"},
		{description: "bad segment", input: "10\n1\nA, x, 1\n", expectErr: "line 3"},
		{description: "bad code", input: "10\n0\n1, 3, A, 1\n", expectErr: "unsupported operation code 3"},
		{description: "create without size", input: "10\n0\n1, 1, A\n", expectErr: "line 3"},
		{description: "zero disk", input: "0\n0\n", expectErr: "total blocks"},
	}
	for _, testCase := range testCases {
		_, err := Parse([]byte(testCase.input))
		assert.ErrorContains(t, err, testCase.expectErr, testCase.description)
	}
}

func TestLoader_Execute(t *testing.T) {
	loader := NewLoader(afs.New(), "embed:///testdata", &testFS)
	declaration, err := loader.Load(context.Background(), "files.txt")
	assert.NoError(t, err)
	assert.Equal(t, 10, declaration.TotalBlocks)
	assert.Len(t, declaration.Segments, 3)
	assert.Len(t, declaration.Operations, 6)
	assert.Equal(t, &Operation{PID: 1, Code: DeleteCode, Name: "B", Line: 14}, declaration.Operations[5])

	srv := New(declaration.TotalBlocks, newDirectory())
	assert.NoError(t, srv.Load(declaration.Segments))
	results := srv.Execute(declaration.Operations)

	var success []bool
	for _, result := range results {
		success = append(success, result.Success())
	}
	assert.Equal(t, []bool{true, false, true, false, false, false}, success)
	assert.True(t, errors.Is(results[1].Err, ErrNoSpace))
	assert.True(t, errors.Is(results[3].Err, ErrPermissionDenied))
	assert.True(t, errors.Is(results[4].Err, ErrUnknownProcess))
	assert.Equal(t, "Operation 1 => Success: process 0 created file X (blocks 2..2)", results[0].String())
	assert.Equal(t, "Operation 3 => Success: process 0 deleted file A", results[2].String())
	assert.Contains(t, results[5].String(), "Operation 6 => Failure: process 1 delete B")
	assert.Equal(t, []string{"0", "0", "X", "B", "0", "0", "C", "C", "0", "0"}, srv.DiskMap())
}
