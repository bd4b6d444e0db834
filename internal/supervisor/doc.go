// Package supervisor starts and stops runs. It spawns the crawl process,
// launches the monitor as a background task, enforces the one-active-run
// rule per requester, and handles cancellation across process
// boundaries: in-memory for its own tasks, flag files and best-effort
// process kills for the pipeline processes.
package supervisor
