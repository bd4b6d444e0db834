// Package crawler implements the paginated crawl loop: it walks the
// site's list pages, filters raw listings down to fresh private-owner
// ads that are not already in the lead store, and produces the record
// set the extraction stage enriches. Progress is published to the
// run's snapshot file after every listing and every page.
package crawler
