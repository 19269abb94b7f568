package arrival

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"

	"github.com/viant/parsly"
	"github.com/viant/procsim/model/process"
)

// fieldCount is the number of values on a declaration line:
// created_at, priority, execution_time, memory_needed, printer, scanner,
// modem, disk.
const fieldCount = 8

// Parse reads one descriptor per line. Blank lines and '#' comments are
// skipped.
func Parse(data []byte) ([]*Descriptor, error) {
	var ret []*Descriptor
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
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
		values, err := ParseFields(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		descriptor, err := newDescriptor(values)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		descriptor.Line = lineNo
		ret = append(ret, descriptor)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

// ParseFields reads a comma separated list of integers.
func ParseFields(input []byte) ([]int, error) {
	cursor := parsly.NewCursor("", input, 0)
	var ret []int
	for {
		matched := cursor.MatchAfterOptional(whitespaceToken, integerToken)
		if matched.Code != integerCode {
			return nil, cursor.NewError(integerToken)
		}
		value, err := strconv.Atoi(matched.Text(cursor))
		if err != nil {
			return nil, err
		}
		ret = append(ret, value)

		matched = cursor.MatchAfterOptional(whitespaceToken, commaToken)
		if matched.Code == commaCode {
			continue
		}
		if !cursor.HasMore() {
			return ret, nil
		}
		return nil, cursor.NewError(commaToken)
	}
}

func newDescriptor(values []int) (*Descriptor, error) {
	if len(values) != fieldCount {
		return nil, fmt.Errorf("expected %d fields, got %d", fieldCount, len(values))
	}
	ret := &Descriptor{
		CreatedAt:     values[0],
		Priority:      values[1],
		ExecutionTime: values[2],
		MemoryNeeded:  values[3],
		Printer:       values[4] != 0,
		Scanner:       values[5] != 0,
		Modem:         values[6] != 0,
		Disk:          values[7] != 0,
	}
	return ret, ret.Validate()
}

// Validate checks descriptor bounds.
func (d *Descriptor) Validate() error {
	switch {
	case d.CreatedAt < 0:
		return fmt.Errorf("created_at %d must be >= 0", d.CreatedAt)
	case d.Priority < process.RealTimePriority || d.Priority > process.LowestPriority:
		return fmt.Errorf("priority %d outside [%d,%d]", d.Priority, process.RealTimePriority, process.LowestPriority)
	case d.ExecutionTime <= 0:
		return fmt.Errorf("execution_time %d must be > 0", d.ExecutionTime)
	case d.MemoryNeeded <= 0:
		return fmt.Errorf("memory_needed %d must be > 0", d.MemoryNeeded)
	}
	return nil
}
