// Package sim implements a discrete-event simulation of one operational day
// of patient flow through a single inpatient unit.
//
// The engine is single-threaded over its own virtual clock, measured in
// minutes from midnight. Arrivals, triage, bed assignment, imaging, consults,
// discharge, bed cleaning, and transport are all events on one priority
// queue ordered by (time, insertion sequence), so a given (Params, seed)
// pair always produces an identical Result. Contended resources (beds,
// imaging slots, transport teams) carry FIFO wait queues; every denied
// acquisition is logged and later ranked into the run's bottleneck list.
package sim
