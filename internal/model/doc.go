// Package model defines the core data types shared across the pipeline:
// listing records produced by the crawl, progress snapshots exchanged
// between processes through the filesystem, and the final run report.
package model
