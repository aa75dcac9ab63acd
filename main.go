package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/webasoo/specmount/app"
	"github.com/webasoo/specmount/config"
	"github.com/webasoo/specmount/internal/specfile"
	"github.com/webasoo/specmount/openapi"
	"github.com/webasoo/specmount/spec"
)

func commandName() string {
	if len(os.Args) == 0 {
		return "specmount"
	}
	base := filepath.Base(os.Args[0])
	if strings.HasSuffix(strings.ToLower(base), ".exe") {
		base = base[:len(base)-len(filepath.Ext(base))]
	}
	base = strings.TrimSpace(base)
	if base == "" || strings.EqualFold(base, "main") {
		return "specmount"
	}
	return base
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runServe(ctx, os.Args[2:]); err != nil {
			log.Fatalf("specmount serve: %v", err)
		}
	case "convert":
		if err := runConvert(os.Args[2:], os.Stdout); err != nil {
			log.Fatalf("specmount convert: %v", err)
		}
	case "help", "-h", "--help", "-help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s %s [flags]\n\n", commandName(), name)
		fmt.Fprintln(fs.Output(), "Flags:")
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output())
	}
	return fs
}

func runServe(ctx context.Context, args []string) error {
	fs := newFlagSet("serve")
	specPath := fs.String("spec", "", "specification file (default <module-root>/openapi.json)")
	configPath := fs.String("config", "", "app config file (default: every viewer and exporter enabled)")
	addr := fs.String("addr", "", "listen address, overrides server.host and server.port")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	a, err := bootServe(*specPath, *configPath, *addr)
	if err != nil {
		return err
	}
	a.Context().Logger.Info("specmount: serving", "addr", a.Addr())
	return a.Serve(ctx)
}

func bootServe(specPath, configPath, addr string) (*app.App, error) {
	doc, err := specfile.Load(strings.TrimSpace(specPath))
	if err != nil {
		return nil, err
	}

	cfg, err := serveConfig(strings.TrimSpace(configPath))
	if err != nil {
		return nil, err
	}
	if addr = strings.TrimSpace(addr); addr != "" {
		if err := applyAddr(cfg, addr); err != nil {
			return nil, err
		}
	}

	actx, err := app.NewContext(cfg)
	if err != nil {
		return nil, err
	}
	return app.Boot(actx, func(chi.Router, *app.Context) {}, openapi.New(nil, openapi.WithDocument(doc)))
}

// serveConfig loads the app config, adding the default openapi section when it has none.
func serveConfig(path string) (*app.Config, error) {
	cfg := app.DefaultConfig()
	if path != "" {
		loaded, err := app.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if _, ok := cfg.InitializerNode(openapi.Name); ok {
		return cfg, nil
	}
	var node yaml.Node
	if err := node.Encode(config.Default()); err != nil {
		return nil, fmt.Errorf("encode default openapi config: %w", err)
	}
	if cfg.Initializers == nil {
		cfg.Initializers = map[string]yaml.Node{}
	}
	cfg.Initializers[openapi.Name] = node
	return cfg, nil
}

func applyAddr(cfg *app.Config, addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("parse addr %q: %w", addr, err)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("parse addr %q: invalid port", addr)
	}
	if host != "" {
		cfg.Server.Host = host
	}
	cfg.Server.Port = n
	return nil
}

func runConvert(args []string, stdout io.Writer) error {
	fs := newFlagSet("convert")
	specPath := fs.String("spec", "", "specification file (default <module-root>/openapi.json)")
	format := fs.String("format", "json", "output format: json or yaml")
	output := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	doc, err := specfile.Load(strings.TrimSpace(*specPath))
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(strings.TrimSpace(*format)) {
	case "json":
		raw, err := spec.MarshalJSON(doc)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("indent json: %w", err)
		}
		buf.WriteByte('\n')
		data = buf.Bytes()
	case "yaml", "yml":
		if data, err = spec.MarshalYAML(doc); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", *format)
	}

	if dst := strings.TrimSpace(*output); dst != "" {
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return fmt.Errorf("write %q: %w", dst, err)
		}
		fmt.Fprintf(stdout, "wrote %s\n", dst)
		return nil
	}
	_, err = stdout.Write(data)
	return err
}

func printUsage() {
	cmd := commandName()
	fmt.Printf(`%s - serve and convert OpenAPI documents

Usage: %s <command> [arguments]

Available Commands:
  serve       Mount the documentation viewers for a specification file
  convert     Write a specification file as JSON or YAML
  help        Show this help message

Examples:
  %[1]s serve -spec openapi.json
  %[1]s serve -spec openapi.json -config app.yaml -addr :9090
  %[1]s convert -spec openapi.json -format yaml -o openapi.yaml
`, cmd, cmd)
}
