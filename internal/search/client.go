package search

import (
	"log"

	es "github.com/elastic/go-elasticsearch/v8"
)

func Connect(url string) *es.Client {
	cfg := es.Config{
		Addresses: []string{url},
	}
	client, err := es.NewClient(cfg)
	if err != nil {
		log.Fatalf("failed to connect to Elasticsearch: %v", err)
	}
	log.Println("connected to Elasticsearch")
	return client
}
