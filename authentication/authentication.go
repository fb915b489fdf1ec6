package authentication

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type Introspection struct {
	Active     bool   `json:"active"`
	ClientId   string `json:"client_id"`
	Expiration int    `json:"exp"`
	Iat        int    `json:"iat"`
	Issuer     string `json:"iss"`
	Scope      string `json:"scope"`
	Sub        string `json:"sub"`
	TokenType  string `json:"token_type"`
}

type introspector struct {
	url    string
	client *http.Client
}

// NewAuthInterceptor validates the bearer token of every unary call against an
// OAuth2 token introspection endpoint and exposes the client ID to the handler.
func NewAuthInterceptor(introspectionUrl string) grpc.UnaryServerInterceptor {
	i := introspector{url: introspectionUrl, client: &http.Client{Timeout: 10 * time.Second}}
	return i.validateToken
}

func GetClientId(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("error while reading metadata")
	}

	clientId := md[clientId.String()]
	if len(clientId) < 1 {
		return "", errors.New("invalid client id")
	}

	return clientId[0], nil
}

func (i introspector) validateToken(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "missing metadata")
	}

	ok, id := i.valid(ctx, md["authorization"])
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "invalid token")
	}

	md = md.Copy()
	md.Set(clientId.String(), id)

	return handler(metadata.NewIncomingContext(ctx, md), req)
}

func (i introspector) valid(ctx context.Context, authorization []string) (bool, string) {
	if len(authorization) < 1 {
		return false, ""
	}

	token := strings.TrimPrefix(authorization[0], "Bearer ")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.url, strings.NewReader(url.Values{"token": {token}}.Encode()))
	if err != nil {
		log.Errorf("error when creating introspection request: %v", err)
		return false, ""
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := i.client.Do(req)
	if err != nil {
		log.Errorf("error when getting introspection response: %v", err)
		return false, ""
	}

	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		log.Errorf("error when reading introspection response: %v", err)
		return false, ""
	}

	var introspection Introspection
	err = json.Unmarshal(body, &introspection)
	if err != nil {
		log.Errorf("error when unmarshalling introspection response %v", err)
		return false, ""
	}

	if !introspection.Active {
		log.Errorf("token is not active (expired or revoked)")
		return false, ""
	}

	log.Infof("client %v authorized", introspection.Sub)

	return introspection.Active, introspection.ClientId
}
