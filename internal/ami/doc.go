// Package ami implements the numerical stages of the AMI level-3
// pipeline: per-exposure fringe analysis, per-role averaging of analysis
// results, and normalization of the science average by the PSF reference
// average.
package ami
