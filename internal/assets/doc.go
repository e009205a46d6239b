// Package assets provides the report stylesheets and the HTML pages of
// physiomath: the standalone report document, the control panel and the
// result page of the web interface.
//
// A Library stacks asset layers. The built-in layer is embedded in the
// binary; Open puts a directory in front of it so a single stylesheet or
// page set can be overridden without copying the rest:
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # default.css (reports), app.css (interface)
//	└── templates/
//	    └── {name}/
//	        ├── report.html      # standalone report document
//	        ├── index.html       # control panel
//	        └── result.html      # report page of the web interface
//
// Names are restricted to letters, digits, '-' and '_'. Directory reads go
// through os.OpenInRoot, so a symlink inside basePath cannot reach files
// outside it.
package assets
