package config

import (
	"github.com/olivere/elastic/v7"
)

func NewElasticClient(url string) (*elastic.Client, error) {
	return elastic.NewClient(elastic.SetURL(url), elastic.SetSniff(false))
}
