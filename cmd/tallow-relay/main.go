// The entrypoint for tallow's relay server: an untrusted rendezvous that
// pairs two endpoints by room code and forwards ciphertext between them.
package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/tallowteam/tallow-go/internal/relay"
	"github.com/tallowteam/tallow-go/internal/transport"
)

const (
	defaultAddr     = ":4433"
	defaultMaxRooms = 10000
	reapInterval    = 30 * time.Second
	defaultRoomAge  = 10 * time.Minute
)

var (
	addr     string
	maxRooms int
	roomAge  time.Duration
	logJSON  bool
)

func main() {
	pflag.StringVar(&addr, "addr", defaultAddr, "address to listen on")
	pflag.IntVar(&maxRooms, "max-rooms", defaultMaxRooms, "maximum concurrent rooms")
	pflag.DurationVar(&roomAge, "max-room-age", defaultRoomAge, "room age since creation before reap")
	pflag.BoolVar(&logJSON, "log-json", false, "emit structured JSON logs")
	pflag.Parse()

	var handler slog.Handler
	if logJSON {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	cert, err := selfSignedCert()
	if err != nil {
		logger.Error("generate relay certificate", "error", err)
		os.Exit(1)
	}

	ln, err := transport.ListenDirectQUIC(addr, transport.SelfSignedTLSConfig(cert))
	if err != nil {
		logger.Error("listen", "error", err)
		os.Exit(1)
	}

	rooms := relay.NewManager(maxRooms)
	server := relay.NewServer(rooms, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go server.ReapLoop(ctx, reapInterval, roomAge)
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	logger.Info("relay listening", "addr", addr, "max_rooms", maxRooms)

	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("relay shutting down")
				return
			}
			logger.Warn("accept", "error", err)
			continue
		}
		go func() {
			if err := server.HandleConnection(ctx, conn); err != nil && ctx.Err() == nil {
				logger.Info("connection ended", "remote", conn.RemoteAddr().String(), "error", err)
			}
		}()
	}
}

func selfSignedCert() (tls.Certificate, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return tls.Certificate{}, err
	}
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{Organization: []string{"tallow relay"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * 365 * time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  priv,
	}, nil
}
