package client

import (
	"context"

	"agendly/pkg/logger"
)

type Client struct {
	Mongo *MongoClient
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	if c.Mongo != nil {
		if err := c.Mongo.Client.Disconnect(context.Background()); err != nil {
			log.Warn("Failed to disconnect MongoDB client", "error", err)
			return
		}
		log.Info("MongoDB client disconnected")
	}
}
