// Package scan enumerates the files a search run will visit.
//
// The walker descends from a root directory, admits files whose extension
// the classifier routes to a pipeline, and prunes configured directory
// names. Enumeration is error-tolerant: unreadable entries are collected
// as diagnostics and the walk continues. Only a missing or non-directory
// root is fatal.
//
// Two passes are supported. Count tallies the candidates per pipeline
// so progress totals are known before any file is read. Walk streams
// candidates in walk order for the scan itself. Running Count before
// Walk costs one extra traversal of directory metadata but no file
// content, and it lets progress report an accurate denominator from
// the first file onward.
//
// Symbolic links are not followed into directories, so link cycles
// cannot recur. Links to regular files are admitted like any other file
// and read through at scan time.
package scan
