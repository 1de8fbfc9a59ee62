package infra

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/linksleuth/linksleuth/internal/model"
)

// inspectTLS opens a verified TLS connection to the hostname and extracts
// the leaf certificate's identity and validity window. Any handshake
// failure (including verification errors) yields Valid=false with the
// captured reason; it never aborts the rest of the inspection.
func (i *Inspector) inspectTLS(ctx context.Context, hostname string) *model.SSLInfo {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: i.timeout},
		Config:    &tls.Config{ServerName: hostname, MinVersion: tls.VersionTLS12},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(hostname, i.tlsPort))
	if err != nil {
		i.logger.Debug("TLS handshake failed", "hostname", hostname, "error", err)
		return &model.SSLInfo{Valid: false, Err: err.Error()}
	}
	defer conn.Close() //nolint:errcheck

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return &model.SSLInfo{Valid: false, Err: "not a TLS connection"}
	}

	certs := tlsConn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return &model.SSLInfo{Valid: false, Err: "no peer certificate presented"}
	}

	leaf := certs[0]
	issuedBy := leaf.Issuer.CommonName
	if len(leaf.Issuer.Organization) > 0 {
		issuedBy = leaf.Issuer.Organization[0]
	}

	return &model.SSLInfo{
		Valid:     true,
		IssuedTo:  leaf.Subject.CommonName,
		IssuedBy:  issuedBy,
		ValidFrom: leaf.NotBefore.UTC().Format(time.RFC3339),
		ValidTo:   leaf.NotAfter.UTC().Format(time.RFC3339),
		DaysLeft:  int(time.Until(leaf.NotAfter).Hours() / 24),
	}
}
