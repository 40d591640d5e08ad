// Package projection turns plans into projection records. A Projector
// builds the scheduler input, chains the spans, measures the deadline
// variance and hands the record to the history store and the event bus.
// Scenario runs evaluate one plan at several base crew counts concurrently.
package projection
