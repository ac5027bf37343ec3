// Package workspace manages the private working area holding one single-page
// artifact per page while a job runs.
//
// Each Manager creates its own uniquely named directory
// (e.g. pagecrop-20251214-122336-1a2b3c4d) so concurrent jobs never share
// artifacts. Artifacts are named by page number, which keeps paths
// deterministic and lets the merge step address them in page order regardless
// of the order in which they were written.
package workspace
