// Package pool
// Author: momentics <momentics@gmail.com>
//
// Generic object pooling for transient buffers on the send path.
package pool
