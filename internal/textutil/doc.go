// Package textutil sanitizes user-supplied names before they reach the
// filesystem or an HTTP header.
package textutil
