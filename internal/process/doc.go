// Package process cleans up browser processes started for PDF export.
package process
