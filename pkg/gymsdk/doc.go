// Package gymsdk holds the wire types and error values of the gymauth HTTP
// API, plus a small client for them. The server writes the same types the
// client reads.
package gymsdk
