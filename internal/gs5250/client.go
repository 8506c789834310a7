package gs5250

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"golang.org/x/net/proxy"

	"greenrun/internal/datastream"
	"greenrun/internal/screen"
	"greenrun/internal/telnet"
	"greenrun/internal/wire"
)

// Sentinel errors Dial wraps its failures in, so callers can tell a
// transport failure from a protocol-negotiation failure without parsing
// error text (spec §4.8's CONNECT_ERROR vs NEGOTIATE_ERROR).
var (
	ErrDial      = errors.New("gs5250: dial failed")
	ErrNegotiate = errors.New("gs5250: telnet negotiation failed")
)

// Client owns one 5250 session: the socket, the telnet-negotiated framer,
// and the most recently parsed screen.
type Client struct {
	conn   net.Conn
	fr     *datastream.FrameReader
	Screen *screen.Buffer
}

// Dial connects to conn.Host:conn.Port, runs client-side telnet
// negotiation, and returns a Client ready to read the host's first record.
func Dial(ctx context.Context, conn Connection, readTimeout time.Duration) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", conn.Host, conn.Port)
	nc, err := dialTransport(ctx, conn, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrDial, addr, err)
	}

	if conn.TLSEnabled {
		nc, err = wrapTLS(nc, conn)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: tls: %s", ErrDial, addr, err)
		}
	}

	res, err := telnet.Negotiate(nc, telnet.Config{
		Role:         telnet.RoleClient,
		TerminalType: conn.TerminalType,
		DeviceName:   conn.DeviceName,
		ReadTimeout:  readTimeout,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: %s", ErrNegotiate, err)
	}

	return &Client{
		conn: nc,
		fr:   datastream.NewFrameReader(nc, res.Pending),
	}, nil
}

// dialTransport opens the raw TCP connection, routing through a SOCKS5
// proxy when conn.ProxyURL is set (some AS/400 shops only expose 5250
// through a jump host), or dialing directly otherwise.
func dialTransport(ctx context.Context, conn Connection, addr string) (net.Conn, error) {
	if conn.ProxyURL == "" {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", addr)
	}

	u, err := url.Parse(conn.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy_url: %w", err)
	}
	dialer, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("building proxy dialer: %w", err)
	}
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, "tcp", addr)
	}
	return dialer.Dial("tcp", addr)
}

// wrapTLS upgrades an already-dialed TCP connection to TLS. When
// conn.TLSCAFile is set, the server certificate is verified against that
// CA only (CA-pinned verification) instead of the system trust store,
// per spec.md §1's non-goal of a full client PKI model.
func wrapTLS(nc net.Conn, conn Connection) (net.Conn, error) {
	tlsCfg := &tls.Config{ServerName: conn.Host}
	if conn.TLSCAFile != "" {
		pem, err := os.ReadFile(conn.TLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("reading tls_ca_file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in tls_ca_file")
		}
		tlsCfg.RootCAs = pool
	}
	tc := tls.Client(nc, tlsCfg)
	if err := tc.HandshakeContext(context.Background()); err != nil {
		nc.Close()
		return nil, err
	}
	return tc, nil
}

// Close releases the underlying socket.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ReadScreen reads one data-stream record from the host, parses it, and
// stores the resulting buffer as the client's current screen.
func (c *Client) ReadScreen(deadline time.Duration) error {
	if deadline > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(deadline))
		defer c.conn.SetReadDeadline(time.Time{})
	}
	record, err := c.fr.ReadRecord()
	if err != nil {
		return fmt.Errorf("gs5250: reading record: %w", err)
	}
	res, err := datastream.Parse(record)
	if err != nil {
		return fmt.Errorf("gs5250: parsing record: %w", err)
	}
	c.Screen = res.Buffer
	return nil
}

// Submit writes the operator's modified fields plus an AID key back to the
// host, then reads and parses the host's responding screen.
func (c *Client) Submit(deadline time.Duration, aid byte, fields []datastream.ModifiedField) error {
	cursorRow, cursorCol := 1, 1
	if c.Screen != nil {
		cursorRow, cursorCol = c.Screen.CursorRow, c.Screen.CursorCol
	}
	record, err := datastream.Encode(aid, cursorRow, cursorCol, fields)
	if err != nil {
		return fmt.Errorf("gs5250: encoding input: %w", err)
	}
	if deadline > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(deadline))
	}
	if _, err := c.conn.Write(record); err != nil {
		return fmt.Errorf("gs5250: writing input: %w", err)
	}
	return c.ReadScreen(deadline)
}

// aidByteFor resolves a configured AID key name to its wire byte.
func aidByteFor(name string) (byte, error) {
	b, ok := wire.AIDByName(name)
	if !ok {
		return 0, fmt.Errorf("gs5250: unknown aid_key %q", name)
	}
	return b, nil
}
