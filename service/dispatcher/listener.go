package dispatcher

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/viant/procsim/model/process"
)

// Listener is invoked right before a process gets the CPU.
//
// The listener is a function type so callers can pass a plain function literal.
type Listener func(pcb *process.PCB, runLength int)

// StdoutListener prints the dispatch block of every run to standard output.
func StdoutListener(pcb *process.PCB, runLength int) {
	WriterListener(os.Stdout)(pcb, runLength)
}

// WriterListener returns a listener printing the dispatch block to w.
func WriterListener(w io.Writer) Listener {
	return func(pcb *process.PCB, runLength int) {
		if pcb == nil {
			return
		}
		_, _ = io.WriteString(w, FormatDispatch(pcb, runLength))
	}
}

// FormatDispatch renders the dispatch block of pcb.
func FormatDispatch(pcb *process.PCB, runLength int) string {
	offset, blocks := "-", "0"
	if segment := pcb.Memory.Segment; segment != nil {
		offset = fmt.Sprint(segment.Offset)
		blocks = fmt.Sprint(segment.Blocks)
	}
	builder := strings.Builder{}
	builder.WriteString("dispatcher =>\n")
	fmt.Fprintf(&builder, "    PID: %d\n", pcb.PID)
	fmt.Fprintf(&builder, "    offset: %s\n", offset)
	fmt.Fprintf(&builder, "    blocks: %s\n", blocks)
	fmt.Fprintf(&builder, "    priority: %d\n", pcb.Priority)
	fmt.Fprintf(&builder, "    time: %d\n", runLength)
	fmt.Fprintf(&builder, "    time left: %d\n", pcb.TimeLeft)
	fmt.Fprintf(&builder, "    printers: %t\n", pcb.Devices.Printer)
	fmt.Fprintf(&builder, "    scanners: %t\n", pcb.Devices.Scanner)
	fmt.Fprintf(&builder, "    modems: %t\n", pcb.Devices.Modem)
	fmt.Fprintf(&builder, "    drives: %t\n", pcb.Devices.Disk)
	return builder.String()
}
