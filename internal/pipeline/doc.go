// Package pipeline sequences the stages a pipeline process runs through.
// Each stage is a Step mutating the shared RunReport; the crawl and
// extraction commands assemble the steps they need and execute them in
// order. Steps record recoverable problems in the report and reserve
// returned errors for failures that must stop the process.
package pipeline
