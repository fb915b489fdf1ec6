package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/nearbyflights/geobounds/authentication"
	"github.com/nearbyflights/geobounds/bbox"
	"github.com/nearbyflights/geobounds/db"
	"github.com/nearbyflights/geobounds/dupe"
	"github.com/nearbyflights/geobounds/geojson"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Store persists and searches extracted bounds. *db.Client implements it.
type Store interface {
	SaveBounds(name string, box bbox.BoundingBox) error
	FindIntersecting(box bbox.BoundingBox) ([]db.Document, error)
}

type Server struct {
	UnimplementedBoundsServer
	// Store is optional; without it persist requests and Search fail with FailedPrecondition.
	Store          Store
	Dupes          *dupe.Cache
	DedupeInterval time.Duration
}

func (s *Server) Extract(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	logger := requestLogger(ctx)
	fields := in.GetFields()

	document, ok := fields["document"]
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "missing document")
	}

	box, err := geojson.Extract(document.AsInterface())
	if err != nil {
		logger.Infof("could not determine bounds: %v", err)

		switch {
		case errors.Is(err, geojson.ErrShape):
			return nil, status.Errorf(codes.InvalidArgument, "%v", err)
		case errors.Is(err, geojson.ErrNoGeometry):
			return nil, status.Errorf(codes.NotFound, "could not determine bounds: %v", err)
		default:
			return nil, status.Errorf(codes.Internal, "%v", err)
		}
	}

	logger.Infof("extracted bounds: http://bboxfinder.com/#%v", box.String())

	persisted := false
	if fields["persist"].GetBoolValue() {
		persisted, err = s.persist(fields["name"].GetStringValue(), box)
		if err != nil {
			return nil, err
		}
	}

	return structpb.NewStruct(map[string]interface{}{
		"min_longitude": box.MinLongitude,
		"max_longitude": box.MaxLongitude,
		"min_latitude":  box.MinLatitude,
		"max_latitude":  box.MaxLatitude,
		"persisted":     persisted,
	})
}

func (s *Server) persist(name string, box bbox.BoundingBox) (bool, error) {
	if s.Store == nil {
		return false, status.Errorf(codes.FailedPrecondition, "persistence is disabled")
	}

	if name == "" {
		return false, status.Errorf(codes.InvalidArgument, "a name is required to persist bounds")
	}

	if s.Dupes != nil && s.Dupes.Exists(name+"|"+box.String(), s.DedupeInterval) {
		log.Infof("bounds of %s already saved", name)
		return false, nil
	}

	if err := s.Store.SaveBounds(name, box); err != nil {
		log.Error(err)
		return false, status.Errorf(codes.Internal, "error saving bounds")
	}

	return true, nil
}

func (s *Server) Search(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.Store == nil {
		return nil, status.Errorf(codes.FailedPrecondition, "persistence is disabled")
	}

	fields := in.GetFields()
	latitude := fields["latitude"].GetNumberValue()
	longitude := fields["longitude"].GetNumberValue()
	radius := fields["radius"].GetNumberValue()

	if radius <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "radius must be positive")
	}

	boundingBox := bbox.NewBoundingBox(latitude, longitude, radius)

	requestLogger(ctx).Infof("search bounds: http://bboxfinder.com/#%v", boundingBox.String())

	documents, err := s.Store.FindIntersecting(boundingBox)
	if err != nil {
		log.Error(err)
		return nil, status.Errorf(codes.Internal, "error searching documents")
	}

	list := make([]interface{}, 0, len(documents))
	for _, d := range documents {
		list = append(list, map[string]interface{}{
			"id":            d.Id,
			"name":          d.Name,
			"min_longitude": d.MinLongitude,
			"max_longitude": d.MaxLongitude,
			"min_latitude":  d.MinLatitude,
			"max_latitude":  d.MaxLatitude,
			"created_at":    d.CreatedAt.Format(time.RFC3339),
		})
	}

	return structpb.NewStruct(map[string]interface{}{"documents": list})
}

func requestLogger(ctx context.Context) *log.Entry {
	clientId, err := authentication.GetClientId(ctx)
	if err != nil {
		clientId = "anonymous"
	}

	return log.WithField("client", clientId)
}
