// ABOUTME: Monitor package exposing installation status over the network
// ABOUTME: HTTP snapshot, websocket feed and mDNS advertisement
// Package monitor lets other machines watch the installation.
//
// GET /status returns one JSON snapshot. /ws upgrades to a websocket that
// receives a snapshot every interval. The service is advertised over mDNS
// as _gwambient._tcp.
package monitor
