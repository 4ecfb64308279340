// Package logstats computes per-commit size statistics for a git repository
// and writes them as a JSON report. For every commit it records the total
// size of tracked blobs and, when the repository uses git-annex, the size of
// annexed files in the commit's tree.
package logstats
