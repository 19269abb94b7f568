package arrival

import (
	"context"
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	_ "github.com/viant/afs/embed"
)

//go:embed testdata/*
var testFS embed.FS

func TestParseFields(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expect      []int
		expectErr   bool
	}{
		{description: "comma and space", input: "0, 1, 2, 64", expect: []int{0, 1, 2, 64}},
		{description: "tight", input: "3,5,4", expect: []int{3, 5, 4}},
		{description: "signed", input: "-1, +2", expect: []int{-1, 2}},
		{description: "single", input: "7", expect: []int{7}},
		{description: "missing value", input: "1,,2", expectErr: true},
		{description: "trailing comma", input: "1, 2,", expectErr: true},
		{description: "word", input: "1, a", expectErr: true},
		{description: "space separated", input: "1 2", expectErr: true},
	}
	for _, testCase := range testCases {
		actual, err := ParseFields([]byte(testCase.input))
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestParse(t *testing.T) {
	descriptors, err := Parse([]byte("# header\n1, 2, 3, 4, 1, 0, 0, 1 # trailing\n\n5, 0, 1, 2, 0, 1, 1, 0\n"))
	assert.NoError(t, err)
	assert.Equal(t, []*Descriptor{
		{CreatedAt: 1, Priority: 2, ExecutionTime: 3, MemoryNeeded: 4, Printer: true, Disk: true, Line: 2},
		{CreatedAt: 5, Priority: 0, ExecutionTime: 1, MemoryNeeded: 2, Scanner: true, Modem: true, Line: 4},
	}, descriptors)

	_, err = Parse([]byte("1, 2, 3\n"))
	assert.ErrorContains(t, err, "line 1")
	_, err = Parse([]byte("0, 1, 1, 1, 0, 0, 0, 0\n0, 1, 0, 1, 0, 0, 0, 0\n"))
	assert.ErrorContains(t, err, "line 2")
	assert.ErrorContains(t, err, "execution_time")
}

func TestFeed(t *testing.T) {
	feed := NewFeed(
		&Descriptor{CreatedAt: 3, Line: 1},
		&Descriptor{CreatedAt: 0, Line: 2},
		&Descriptor{CreatedAt: 3, Line: 3},
		&Descriptor{CreatedAt: 1, Line: 4},
	)
	assert.Equal(t, 4, feed.Pending())
	next, ok := feed.Next()
	assert.True(t, ok)
	assert.Equal(t, 0, next)

	assert.Equal(t, []int{2, 4}, lines(feed.FetchUntil(2)))
	assert.Empty(t, feed.FetchUntil(2))

	feed.Append(&Descriptor{CreatedAt: 1, Line: 5})
	feed.Append(&Descriptor{CreatedAt: 3, Line: 6})
	assert.Equal(t, []int{5, 1, 3, 6}, lines(feed.FetchUntil(10)))
	assert.True(t, feed.Done())
	assert.Equal(t, 6, feed.Len())
	_, ok = feed.Next()
	assert.False(t, ok)
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(afs.New(), "embed:///testdata", &testFS)

	feed, err := loader.Load(ctx, "processes.txt")
	assert.NoError(t, err)
	assert.Equal(t, 5, feed.Len())

	first := feed.FetchUntil(0)
	assert.Equal(t, []int{2, 4}, lines(first))
	assert.True(t, first[1].Devices().Printer)
	last := feed.FetchUntil(3)
	assert.Equal(t, []int{5, 3, 7}, lines(last))
	assert.True(t, last[2].Modem)
	assert.True(t, last[2].Disk)

	_, err = loader.Load(ctx, "invalid.txt")
	assert.ErrorContains(t, err, "priority 9")

	_, err = loader.Load(ctx, "missing.txt")
	assert.Error(t, err)
}

func lines(descriptors []*Descriptor) []int {
	var ret []int
	for _, descriptor := range descriptors {
		ret = append(ret, descriptor.Line)
	}
	return ret
}
