package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/viant/procsim/model/process"
	"gopkg.in/yaml.v3"
)

// Render writes snapshot as aligned text.
func Render(w io.Writer, snapshot *Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "tick: %d\n\n", snapshot.Tick)

	fmt.Fprintln(tw, "PID\tSTART\tPRIORITY\tSTATE\tTIME LEFT\tOFFSET\tBLOCKS")
	for _, row := range snapshot.Processes {
		offset := "-"
		if row.Offset >= 0 {
			offset = fmt.Sprint(row.Offset)
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%v\t%d\t%v\t%d\n", row.PID, row.StartingPriority, row.Priority, row.State, row.TimeLeft, offset, row.Blocks)
	}
	fmt.Fprintln(tw)

	for level, queue := range snapshot.Queues {
		fmt.Fprintf(tw, "queue %d:\t%v\n", level, pids(queue))
	}
	fmt.Fprintf(tw, "pending:\t%v\n\n", pids(snapshot.Pending))

	for _, usage := range snapshot.Memory {
		fmt.Fprintf(tw, "memory [%d,%d):\tused %d\tfree %d\n", usage.Region.Start, usage.Region.End, usage.Used, usage.Free)
	}
	for _, devices := range snapshot.Devices {
		fmt.Fprintf(tw, "%v:\t%v\n", devices.Kind, pids(devices.Holders))
	}
	fmt.Fprintln(tw)

	if len(snapshot.Records) > 0 {
		fmt.Fprintln(tw, "PID\tSTART\tFINAL\tCREATED\tFIRST RUN\tFINISHED\tTURNAROUND\tRESPONSE\tDISPATCHES\tPREEMPTIONS\tREJECTED")
		for _, record := range snapshot.Records {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%v\n",
				record.PID, record.StartingPriority, record.FinalPriority, record.CreatedAt, record.FirstRunAt,
				record.FinishedAt, record.Turnaround(), record.Response(), record.Dispatches, record.Preemptions, record.Rejected)
		}
		fmt.Fprintln(tw)
	}
	if c := snapshot.Counters; c != nil {
		fmt.Fprintf(tw, "created %d\trejected %d\tterminated %d\tdispatches %d\tpreemptions %d\tidle %d/%d\tutilisation %.2f\n",
			c.Created, c.Rejected, c.Terminated, c.Dispatches, c.Preemptions, c.IdleTicks, c.Ticks, c.Utilisation)
	}
	return tw.Flush()
}

// String renders snapshot as text.
func (s *Snapshot) String() string {
	builder := &strings.Builder{}
	_ = Render(builder, s)
	return builder.String()
}

// YAML encodes snapshot.
func YAML(snapshot *Snapshot) ([]byte, error) {
	return yaml.Marshal(snapshot)
}

func pids(values []process.PID) string {
	if len(values) == 0 {
		return "[]"
	}
	items := make([]string, len(values))
	for i, pid := range values {
		if pid == process.NoPID {
			items[i] = "-"
			continue
		}
		items[i] = fmt.Sprint(int(pid))
	}
	return "[" + strings.Join(items, " ") + "]"
}
