// Package config holds all runtime configuration for leadscan: documented
// defaults, the flat Config struct populated from CLI flags and the
// optional .leadscan yaml file, XDG directory helpers, and the city-code
// table used for run naming.
package config
