// Package cancel implements the run cancellation token with two backends:
// an in-memory flag for tasks sharing the supervisor's process, and a
// marker file for the crawl and extraction OS processes, which can only
// observe cancellation through the filesystem. Callers hold a Token and
// never need to know which backend answered.
package cancel
