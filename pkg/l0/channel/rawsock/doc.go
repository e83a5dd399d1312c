// Package rawsock implements link.Channel over a raw Ethernet socket
// bound to a network interface.
//
// Opening the socket requires CAP_NET_RAW.
package rawsock
