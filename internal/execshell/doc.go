// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner
// for default process execution, and defines the abstractions repostats uses
// to run git, git-annex, and configured analysis executables in a testable
// manner.
package execshell
