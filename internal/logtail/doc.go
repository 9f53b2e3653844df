// Package logtail reads the tail of folio's log file and filters it by
// logrus level.
//
// Read keeps only the last N lines in a ring buffer, so memory stays
// O(N) regardless of file size. A missing file yields no lines. Level
// understands both the text and the JSON logrus formatters.
package logtail
