// See engine.go for the sector-swap contract: after Run(n) returns, for
// every sector i < n, the bytes previously at APP+i·S are at
// DOWNLOAD+i·S and vice versa. Two consecutive Run calls with the same
// swapSize are self-inverse.
package swap
