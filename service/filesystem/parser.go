package filesystem

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"

	"github.com/viant/parsly"
	"github.com/viant/procsim/model/process"
)

// Parse reads a declaration: total blocks, segment count, the segments as
// "name, start, size", then operations as "pid, 1, name, size" (create) or
// "pid, 2, name" (delete). Blank lines and '#' comments are skipped.
func Parse(data []byte) (*Declaration, error) {
	ret := &Declaration{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo, section, segments := 0, 0, 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if index := bytes.IndexByte(line, '#'); index >= 0 {
			line = line[:index]
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		fields := newFields(line)
		var err error
		switch {
		case section == 0:
			ret.TotalBlocks, err = fields.single()
			if err == nil && ret.TotalBlocks <= 0 {
				err = fmt.Errorf("total blocks %d must be > 0", ret.TotalBlocks)
			}
			section++
		case section == 1:
			segments, err = fields.single()
			section++
		case len(ret.Segments) < segments:
			var segment *Segment
			if segment, err = fields.segment(); err == nil {
				ret.Segments = append(ret.Segments, segment)
			}
		default:
			var operation *Operation
			if operation, err = fields.operation(); err == nil {
				operation.Line = lineNo
				ret.Operations = append(ret.Operations, operation)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if section < 2 {
		return nil, fmt.Errorf("missing disk header")
	}
	if len(ret.Segments) < segments {
		return nil, fmt.Errorf("expected %d segments, got %d", segments, len(ret.Segments))
	}
	return ret, nil
}

type fields struct {
	cursor *parsly.Cursor
	count  int
}

func newFields(line []byte) *fields {
	return &fields{cursor: parsly.NewCursor("", line, 0)}
}

func (f *fields) next(token *parsly.Token) (string, error) {
	if f.count > 0 {
		matched := f.cursor.MatchAfterOptional(whitespaceToken, commaToken)
		if matched.Code != commaCode {
			return "", f.cursor.NewError(commaToken)
		}
	}
	matched := f.cursor.MatchAfterOptional(whitespaceToken, token)
	if matched.Code != token.Code {
		return "", f.cursor.NewError(token)
	}
	f.count++
	return matched.Text(f.cursor), nil
}

func (f *fields) int() (int, error) {
	text, err := f.next(integerToken)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(text)
}

func (f *fields) end() error {
	if f.cursor.HasMore() {
		return f.cursor.NewError(commaToken)
	}
	return nil
}

func (f *fields) single() (int, error) {
	value, err := f.int()
	if err != nil {
		return 0, err
	}
	return value, f.end()
}

func (f *fields) segment() (*Segment, error) {
	name, err := f.next(nameToken)
	if err != nil {
		return nil, err
	}
	ret := &Segment{Name: name}
	if ret.Start, err = f.int(); err != nil {
		return nil, err
	}
	if ret.Size, err = f.int(); err != nil {
		return nil, err
	}
	return ret, f.end()
}

func (f *fields) operation() (*Operation, error) {
	pid, err := f.int()
	if err != nil {
		return nil, err
	}
	code, err := f.int()
	if err != nil {
		return nil, err
	}
	ret := &Operation{PID: process.PID(pid), Code: Code(code)}
	if ret.Name, err = f.next(nameToken); err != nil {
		return nil, err
	}
	switch ret.Code {
	case CreateCode:
		if ret.Size, err = f.int(); err != nil {
			return nil, err
		}
	case DeleteCode:
		if f.cursor.HasMore() {
			if _, err = f.next(nameToken); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unsupported operation code %d", code)
	}
	return ret, f.end()
}
