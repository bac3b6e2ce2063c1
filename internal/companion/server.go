package companion

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/rtzll/transcriptgrab/internal/logger"
)

const maxLine = 8 * 1024 * 1024

// Handler answers one request.
type Handler interface {
	Handle(ctx context.Context, req Request) Response
}

// Listener serves NDJSON requests on a Unix socket.
type Listener struct {
	path    string
	handler Handler
	log     *logger.Logger
	wg      sync.WaitGroup
}

func NewListener(socketPath string, h Handler, log *logger.Logger) *Listener {
	if log == nil {
		log = logger.Nop()
	}
	return &Listener{path: socketPath, handler: h, log: log}
}

// Serve accepts connections until ctx is cancelled. A stale socket file
// from a previous run is removed first.
func (l *Listener) Serve(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("creating socket directory: %w", err)
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stale socket: %w", err)
	}

	ln, err := net.Listen("unix", l.path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", l.path, err)
	}
	defer os.Remove(l.path)
	if err := os.Chmod(l.path, 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("restricting socket permissions: %w", err)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	l.log.Info("companion listening", "socket", l.path)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				l.wg.Wait()
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.serveConn(ctx, conn)
		}()
	}
}

func (l *Listener) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-connCtx.Done()
		conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	for scanner.Scan() {
		var (
			req  Request
			resp Response
		)
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			resp = Response{Error: fmt.Sprintf("invalid request: %v", err), ErrorKind: "validation"}
		} else {
			resp = l.handler.Handle(connCtx, req)
		}

		data, err := json.Marshal(resp)
		if err != nil {
			l.log.Error("encoding response failed", "op", req.Op, "error", err)
			return
		}
		if _, err := conn.Write(append(data, '\n')); err != nil {
			l.log.Debug("client went away", "error", err)
			return
		}
	}
	if err := scanner.Err(); err != nil && connCtx.Err() == nil {
		l.log.Debug("reading request failed", "error", err)
	}
}
