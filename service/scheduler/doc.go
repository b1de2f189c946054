// Package scheduler implements CBS+EDF admission control and selection.
//
// Every admitted task gets a Constant Bandwidth Server holding a budget of
// WCET nanoseconds per period. Admission keeps the summed utilization under a
// configured bound expressed in milli-units, so the core never needs floating
// point. Each tick ScheduleNext picks the ready server with the earliest
// absolute deadline; CompleteExecution charges the measured time to the
// server and throttles it once its budget is exhausted until the next period
// boundary, so an overrunning server cannot steal bandwidth from others.
//
// Deadline misses and overruns are counted and reported, never returned as
// errors. Admission rejection is the only recoverable failure.
package scheduler
