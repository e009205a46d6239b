// Package server provides the web interface: the control panel, report
// pages, the render API, PDF downloads, and the metrics endpoint.
package server
