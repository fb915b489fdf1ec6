package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/nearbyflights/geobounds/authentication"
	"github.com/nearbyflights/geobounds/bbox"
	"github.com/nearbyflights/geobounds/db"
	"github.com/nearbyflights/geobounds/dupe"
	"github.com/nearbyflights/geobounds/geojson"
	grpcService "github.com/nearbyflights/geobounds/grpc"
	"github.com/nearbyflights/geobounds/loader"
	"github.com/nearbyflights/geobounds/schedule"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

type Configuration struct {
	InputPaths            []string      `envconfig:"INPUT_PATHS" default:"./data.geojson"`
	Output                string        `envconfig:"OUTPUT" default:"text"`
	Serve                 bool          `envconfig:"SERVE" default:"false"`
	ListenAddress         string        `envconfig:"LISTEN_ADDRESS" default:":8080"`
	Persist               bool          `envconfig:"PERSIST" default:"false"`
	PostgresUrl           string        `envconfig:"POSTGRES_URL" default:"localhost:5432"`
	User                  string        `envconfig:"POSTGRES_USER" default:"admin"`
	Password              string        `envconfig:"POSTGRES_PASSWORD" default:"secret"`
	DatabaseName          string        `envconfig:"POSTGRES_DB" default:"geobounds"`
	IntrospectionUrl      string        `envconfig:"INTROSPECTION_URL"`
	TlsCertificatePath    string        `envconfig:"TLS_CERTIFICATE_PATH"`
	TlsCertificateKeyPath string        `envconfig:"TLS_CERTIFICATE_KEY_PATH"`
	WatchInterval         time.Duration `envconfig:"WATCH_INTERVAL" default:"0s"`
	DedupeInterval        time.Duration `envconfig:"DEDUPE_INTERVAL" default:"1h"`
	LogLevel              string        `envconfig:"LOG_LEVEL" default:"info"`
}

func init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{ForceColors: true})
}

func main() {
	var c Configuration
	err := envconfig.Process("geobounds", &c)
	if err != nil {
		log.Fatal(err.Error())
	}

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.SetLevel(level)

	if c.Output != "text" && c.Output != "geojson" {
		log.Fatalf("unknown output format %q", c.Output)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case c.Serve:
		err = serve(c)
	case c.WatchInterval > 0:
		err = watch(ctx, c)
	default:
		err = extract(ctx, c, os.Stdout)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func newStore(c Configuration) (*db.Client, error) {
	client := db.NewClient(db.ClientOptions{
		Address:  c.PostgresUrl,
		User:     c.User,
		Password: c.Password,
		Database: c.DatabaseName,
	})

	if err := client.CreateSchema(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error creating schema: %v", err)
	}

	return &client, nil
}

func serve(c Configuration) error {
	server := &grpcService.Server{Dupes: &dupe.Cache{}, DedupeInterval: c.DedupeInterval}

	if c.Persist {
		store, err := newStore(c)
		if err != nil {
			return err
		}
		defer store.Close()
		server.Store = store
	}

	var opts []grpc.ServerOption

	if c.TlsCertificatePath != "" {
		cert, err := credentials.NewServerTLSFromFile(c.TlsCertificatePath, c.TlsCertificateKeyPath)
		if err != nil {
			return fmt.Errorf("error loading TLS certificate %v", err)
		}
		// Enable TLS for all incoming connections.
		opts = append(opts, grpc.Creds(cert))
	}

	if c.IntrospectionUrl != "" {
		// Intercept request to check the token.
		opts = append(opts, grpc.UnaryInterceptor(authentication.NewAuthInterceptor(c.IntrospectionUrl)))
	}

	grpcServer := grpc.NewServer(opts...)
	listener, err := net.Listen("tcp", c.ListenAddress)
	if err != nil {
		return fmt.Errorf("error creating the server %v", err)
	}

	log.Infof("starting server at %s", c.ListenAddress)

	grpcService.RegisterBoundsServer(grpcServer, server)
	return grpcServer.Serve(listener)
}

func watch(ctx context.Context, c Configuration) error {
	var store *db.Client
	if c.Persist {
		var err error
		store, err = newStore(c)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	scheduler := schedule.Scheduler{Interval: c.WatchInterval, Paths: c.InputPaths}
	results, err := scheduler.Watch(ctx)
	if err != nil {
		return err
	}

	log.Infof("watching %d file(s) every %v", len(c.InputPaths), c.WatchInterval)

	for r := range results {
		if r.Error != nil {
			log.Errorf("could not determine bounds: %v", r.Error)
			continue
		}

		log.WithField("path", r.Path).Infof("bounds changed: http://bboxfinder.com/#%v", r.Box.String())

		if store != nil {
			if err := store.SaveBounds(r.Path, r.Box); err != nil {
				log.Error(err)
			}
		}
	}

	return nil
}

func extract(ctx context.Context, c Configuration, w io.Writer) error {
	results, err := loader.LoadAll(ctx, c.InputPaths)
	if err != nil {
		return err
	}

	for _, r := range results {
		var shapeErr *geojson.ShapeError
		if errors.As(r.Error, &shapeErr) {
			return r.Error
		}
	}

	var store *db.Client
	if c.Persist {
		store, err = newStore(c)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	for _, r := range results {
		if len(results) > 1 {
			fmt.Fprintf(w, "%s\n", r.Path)
		}

		if r.Error != nil {
			printFailure(w, r.Error)
			continue
		}

		if err := printBounds(w, c.Output, r.Box); err != nil {
			return err
		}

		if store != nil {
			if err := store.SaveBounds(r.Path, r.Box); err != nil {
				log.Error(err)
			}
		}
	}

	if len(results) > 1 {
		if box, ok := loader.Union(results); ok {
			fmt.Fprintln(w, "All files")
			return printBounds(w, c.Output, box)
		}
	}

	return nil
}

func printBounds(w io.Writer, output string, box bbox.BoundingBox) error {
	if output == "geojson" {
		data, err := box.Feature().MarshalJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintf(w, "Minimum Longitude: %v\n", box.MinLongitude)
	fmt.Fprintf(w, "Maximum Longitude: %v\n", box.MaxLongitude)
	fmt.Fprintf(w, "Minimum Latitude: %v\n", box.MinLatitude)
	fmt.Fprintf(w, "Maximum Latitude: %v\n", box.MaxLatitude)

	return nil
}

func printFailure(w io.Writer, err error) {
	var cause string
	switch {
	case errors.Is(err, loader.ErrNotFound):
		cause = "file not found"
	case errors.Is(err, loader.ErrMalformedInput):
		cause = "invalid GeoJSON format"
	case errors.Is(err, geojson.ErrNoCoordinates):
		cause = "geometries contain no coordinates"
	case errors.Is(err, geojson.ErrNoGeometry):
		cause = "no valid geometries found"
	default:
		cause = "unexpected error"
	}

	log.Debug(err)
	fmt.Fprintf(w, "Could not determine bounds (%s): %v\n", cause, err)
}
