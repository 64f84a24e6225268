// Package files locates the raw report workbooks on disk and stages
// uploaded ones. Discovery is name-based: the nine boundary sources are
// identified by their exact contract file names, the per-company trading
// workbooks by their .xlsx extension.
package files
