// Package phone extracts Israeli mobile numbers from listing detail
// pages and runs the second pipeline stage, which enriches the
// crawl-stage export file with real phone numbers. Extraction tries
// markup locations first and falls back to scanning the whole page
// text; every candidate is normalized to the canonical local form
// before it is accepted.
package phone
