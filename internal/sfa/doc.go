// Package sfa implements the Symbolic Fourier Approximation of time series
// windows: truncated, normalized Fourier coefficients per window, equi-depth
// breakpoints fitted on a training set (MCB), and the quantization of
// coefficient vectors into packed symbolic words.
//
// Two transform strategies produce the same coefficients:
//
//   - Direct computes every window from scratch through the FFT. It is used
//     for the disjoint windows the breakpoints are fitted on.
//   - Sliding is the momentary Fourier transform: each stride-1 window reuses
//     the previous window's unnormalized coefficients through a phase rotation
//     and keeps a running mean and variance, so one window costs O(L).
package sfa
