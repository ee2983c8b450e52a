// Package util provides utility components for register implementations.
//
// The package contains a SizeHistogram for tracking the distribution of
// published value sizes with minimal memory overhead. The histogram uses
// exponential bucket sizing to cover a wide range of values (bytes to
// gigabytes), so implementations can report on value characteristics
// without retaining the values themselves.
package util
