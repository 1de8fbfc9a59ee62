// Package infra implements the infrastructure inspector: it characterizes
// the network and hosting posture of a URL's hostname.
//
// One inspection runs four independent steps concurrently: TLS certificate
// extraction, IP/ASN/geolocation lookup, CDN and proxy/hosting detection
// over the hosting organization name, and domain registration age via RDAP.
// Every step degrades to an explicit error marker on failure and never
// prevents the other steps from completing.
package infra
