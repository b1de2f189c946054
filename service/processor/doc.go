// Package processor hosts the execution loop that runs graph operators.
// Every step optionally asks the CBS+EDF scheduler for permission, picks the
// highest-priority runnable operator, runs its body to completion, measures
// the elapsed time and feeds it back into the scheduler budget accounting.
// The loop never blocks: it stops early when nothing is runnable and the
// caller re-invokes it later.
package processor
