// Package staging keeps the export staging directory tidy. Engine scratch
// directories and rendered outputs are normally removed by their owners; a
// crash or kill leaves them behind, and Sweep reclaims them once they age out.
package staging
