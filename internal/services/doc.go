// Package services implements the business layer between the HTTP
// handlers (or CLI drivers) and the boundary/trading engines. Services
// own the file orchestration: locating sources, running the engines,
// and writing the output workbooks into the reports directory.
package services
