// Package utils provides shared infrastructure for the repostats CLI:
// a zap logger factory, a Viper-backed configuration loader, and a
// flush-on-write writer used to interleave concurrent progress output.
package utils
