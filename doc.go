// Package procsim simulates the process-execution core of an operating
// system: a process table, a multi-level feedback queue scheduler with aging
// and preemption on arrival, a first-fit memory manager split into a
// real-time and a general region, and a finite set of I/O devices.
//
// Time is discrete. Every executed instruction advances the clock by one tick
// and arrivals due at that tick are admitted before the next instruction.
//
// End-users typically interact with the simulator via the Service facade:
//
//	srv, _ := procsim.New()
//	feed, _ := srv.LoadArrivals(ctx, "processes.txt")
//	sim, result, _ := srv.Run(ctx, feed)
//	snapshot, _ := sim.Snapshot(ctx)
//	fmt.Print(snapshot)
//
// The optional file-system stage runs a declaration of file operations
// against the processes seen by a finished run, see Service.RunFileSystem.
package procsim
