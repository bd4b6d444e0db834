// Package extract parses the rendered HTML of the classifieds site. The
// site is a Next.js app, so the authoritative data is the embedded page
// state JSON rather than the visible markup; this package locates that
// state, finds the listing feed inside it (the site moves it around
// between releases), and maps raw listing objects onto the pipeline's
// record type. It also handles the detail-page fields and the visible
// publish-date scan used by the recency filter.
package extract
