package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/phyten/usagex/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		f    searchFlags
		port int
		host string
		open bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a web UI for searching the root directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uiLayer := f.uiLayer(cmd)
			if cmd.Flags().Changed("port") {
				uiLayer.Port = &port
			}
			s, err := a.resolveSettings(cmd, &f, uiLayer)
			if err != nil {
				return err
			}
			root, err := filepath.Abs(s.opts.Root)
			if err != nil {
				return err
			}
			s.opts.Root = root

			ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(s.ui.Port)))
			if err != nil {
				return err
			}
			srv := &http.Server{
				Handler:           web.NewServer(s.opts, a.runner).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			url := fmt.Sprintf("http://%s/", displayAddr(ln.Addr()))
			log.Printf("usagex serve listening on %s (root=%s)", url, root)
			if open {
				if err := a.openURL(url); err != nil {
					log.Printf("open browser: %v", err)
				}
			}
			return serveUntilDone(cmd.Context(), srv, ln)
		},
	}
	addSearchFlags(cmd, &f)
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "address to bind")
	cmd.Flags().BoolVar(&open, "open", false, "open the UI in the default browser")
	return cmd
}

// serveUntilDone は ctx が終わったら新規接続を止め、処理中のリクエストを待って戻ります。
func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func displayAddr(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok || tcp.IP.IsUnspecified() {
		if ok {
			return net.JoinHostPort("localhost", strconv.Itoa(tcp.Port))
		}
		return addr.String()
	}
	return tcp.String()
}
