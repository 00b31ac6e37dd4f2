// Package protocol defines the messages exchanged with the build daemon.
//
// Every message is a JSON envelope terminated by a newline. A connection
// carries exactly one exchange: the client sends a request envelope and the
// daemon answers with an "ok" envelope carrying the result, or an "error"
// envelope carrying an [ErrorResult].
//
//	{"command":"build","payload":{"context":"/src/ragbuilder"}}
//	{"command":"ok","payload":{"name":"ragbuilder","image":"ragbuilder:latest",...}}
//
// [Request] implements the client side of the exchange.
package protocol
