// Package quant builds GIF palettes from true-color rasters.
//
// Quantization is deterministic: the same pixels always produce the same
// palette order and the same index assignment. Rasters with few enough
// distinct colors are indexed losslessly, in first-appearance order; larger
// sets are reduced with a median cut followed by a short k-means refinement.
// Fully transparent pixels collapse into one reserved entry at index 0.
package quant
