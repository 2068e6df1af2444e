// Package runhistory persists generation run outcomes in a local SQLite
// database for later inspection.
package runhistory
