package filesystem

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes start at 1 to stay clear of parsly reserved codes.
const (
	whitespaceCode = iota + 1
	integerCode
	commaCode
	nameCode
)

var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	integerToken    = parsly.NewToken(integerCode, "Integer", &integerMatcher{})
	commaToken      = parsly.NewToken(commaCode, ",", matcher.NewByte(','))
	nameToken       = parsly.NewToken(nameCode, "Name", &nameMatcher{})
)

// integerMatcher matches an unsigned decimal integer.
type integerMatcher struct{}

func (m *integerMatcher) Match(cursor *parsly.Cursor) int {
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		if c := cursor.Input[i]; c < '0' || c > '9' {
			break
		}
		matched++
	}
	return matched
}

// nameMatcher matches a file name: anything up to a comma or whitespace.
type nameMatcher struct{}

func (m *nameMatcher) Match(cursor *parsly.Cursor) int {
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		switch cursor.Input[i] {
		case ',', ' ', '\t', '\r', '\n':
			return matched
		}
		matched++
	}
	return matched
}
