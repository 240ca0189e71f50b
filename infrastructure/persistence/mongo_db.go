package persistence

import (
	"fmt"
	"net/url"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NewMongoDb connects the optional MongoDB client used for dispatch audit
// documents. Callers may treat a connection failure as a degraded mode.
func NewMongoDb(host, port, user, password, name string) (*mongo.Client, error) {
	if host == "" {
		return nil, fmt.Errorf("mongo host not configured")
	}
	uri := fmt.Sprintf("mongodb://%s:%s/%s", host, port, name)
	if user != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%s/%s",
			url.QueryEscape(user), url.QueryEscape(password), host, port, name)
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting mongo: %w", err)
	}
	return client, nil
}
