// Package resources provides MCP resources for the library directory.
// Resources are read-only data sources that MCP clients can fetch without calling
// a tool, such as the list of configured libraries.
package resources
