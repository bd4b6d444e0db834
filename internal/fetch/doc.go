// Package fetch is the adapter for the external page-fetch service: a
// rendering API that loads a URL in a real browser, executes JavaScript,
// and returns the final HTML. Every outbound request the pipeline makes
// goes through this package, which also enforces the politeness rate
// limit the service's usage terms require.
package fetch
