// Package ws carries protocol messages over gorilla websockets: a Client
// for sessions that follow a remote authority and a Hub for the authority
// server.
package ws

import "time"

const (
	// writeWait bounds a single frame write
	writeWait = 10 * time.Second

	// pongWait is how long a peer may stay silent
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer is the per-connection outbound queue length
	sendBuffer = 32

	// maxMessageSize caps inbound frames; ready requests carry elements
	maxMessageSize = 64 * 1024
)
