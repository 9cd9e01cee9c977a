// Package platform contains OS integration and local filesystem helpers:
// download path validation, collision-free file names, checksums and
// revealing files in the system file manager.
package platform
