// Package dataprocessing implements the statement processing pipeline: it
// splits a raw brokerage statement into labeled sections, cleans each
// section of report scaffolding, classifies daily-summary rows by asset
// category, decodes option symbols, aggregates trades per instrument and
// derives portfolio metrics, ending with a set of export tables ready for
// append-only persistence.
//
// The pipeline is synchronous and allocates all working state per call, so
// a single Processor is safe for concurrent use.
package dataprocessing
