package db

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/olivere/elastic/v7"

	"bookshelf/models"
)

const (
	refreshWaitFor  = "wait_for"
	DefaultPageSize = 1000
	bookMapping     = `{
	"mappings": {
		"properties": {
			"id":              {"type": "long"},
			"title":           {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"author":          {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"publicationYear": {"type": "integer"}
		}
	}
}`
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ElasticLibraryManager stores each book as a document whose _id is the book id.
// Elasticsearch does not generate numeric ids, so new ids come from an IdSequence.
type ElasticLibraryManager struct {
	IndexName     string
	ElasticClient *elastic.Client
	// PageSize is the number of hits FindAll asks for per search request.
	PageSize int
	ids      IdSequence
	logger   Logger
}

func NewElasticLibrary(client *elastic.Client, ids IdSequence, indexName string, logger Logger) (*ElasticLibraryManager, error) {
	if client == nil {
		return nil, ErrNilDatabaseConnection
	}

	if ids == nil {
		return nil, ErrNilIdSequence
	}

	if indexName == "" {
		return nil, ErrEmptyTableName
	}

	return &ElasticLibraryManager{
		IndexName:     indexName,
		ElasticClient: client,
		PageSize:      DefaultPageSize,
		ids:           ids,
		logger:        logger,
	}, nil
}

// EnsureIndex creates the book index with its mapping when it does not exist yet.
func (library *ElasticLibraryManager) EnsureIndex(ctx context.Context) error {
	exists, err := library.ElasticClient.IndexExists(library.IndexName).Do(ctx)
	if err != nil {
		return library.failed(opEnsureSchema, err)
	}

	if !exists {
		if _, err := library.ElasticClient.CreateIndex(library.IndexName).BodyString(bookMapping).Do(ctx); err != nil {
			return library.failed(opEnsureSchema, err)
		}
	}

	if library.logger != nil {
		library.logger.Info(logMsgIndexReady, logAttrIndex, library.IndexName)
	}

	return nil
}

func (library *ElasticLibraryManager) Save(ctx context.Context, book *models.Book) (*models.Book, error) {
	id, ok := book.Id()
	if ok {
		exists, err := library.ElasticClient.Exists().Index(library.IndexName).Id(id.String()).Do(ctx)
		if err != nil {
			return nil, library.failed(opSave, err, logAttrBookId, id.String())
		}
		ok = exists
	}

	// Unknown ids are stored as new books under a fresh id.
	if !ok {
		next, err := library.ids.Next(ctx)
		if err != nil {
			return nil, library.failed(opSave, err)
		}
		id = next
	}

	saved := book.WithID(id)

	body, err := json.MarshalToString(saved)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSave, err)
	}

	_, err = library.ElasticClient.Index().
		Index(library.IndexName).
		Id(id.String()).
		BodyString(body).
		Refresh(refreshWaitFor).
		Do(ctx)
	if err != nil {
		return nil, library.failed(opSave, err, logAttrBookId, id.String())
	}

	return saved, nil
}

// FindAll pages through the index in id order with search_after, PageSize hits at a time.
func (library *ElasticLibraryManager) FindAll(ctx context.Context) ([]*models.Book, error) {
	pageSize := library.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	books := make([]*models.Book, 0)

	var after []interface{}
	for {
		search := library.ElasticClient.Search().
			Index(library.IndexName).
			Query(elastic.NewMatchAllQuery()).
			Sort(colId, true).
			Size(pageSize).
			Pretty(false)

		if after != nil {
			search = search.SearchAfter(after...)
		}

		result, err := search.Do(ctx)
		if err != nil {
			return nil, library.failed(opFindAll, err)
		}

		hits := result.Hits.Hits
		for _, hit := range hits {
			var book models.Book
			if err := json.Unmarshal(hit.Source, &book); err != nil {
				return nil, fmt.Errorf("%s: document %s: %w", opFindAll, hit.Id, err)
			}
			books = append(books, &book)
		}

		if len(hits) < pageSize {
			return books, nil
		}

		after = hits[len(hits)-1].Sort
	}
}

func (library *ElasticLibraryManager) FindById(ctx context.Context, id models.Id) (*models.Book, error) {
	doc, err := library.ElasticClient.
		Get().
		Index(library.IndexName).
		Id(id.String()).
		Do(ctx)

	if elastic.IsNotFound(err) || (err == nil && !doc.Found) {
		return nil, fmt.Errorf("%w: %s", models.ErrBookNotFound, id)
	}

	if err != nil {
		return nil, library.failed(opFindById, err, logAttrBookId, id.String())
	}

	var book models.Book
	if err := json.Unmarshal(doc.Source, &book); err != nil {
		return nil, fmt.Errorf("%s: %w", opFindById, err)
	}

	return &book, nil
}

func (library *ElasticLibraryManager) DeleteById(ctx context.Context, id models.Id) error {
	_, err := library.ElasticClient.
		Delete().
		Index(library.IndexName).
		Id(id.String()).
		Refresh(refreshWaitFor).
		Do(ctx)

	if err != nil && !elastic.IsNotFound(err) {
		return library.failed(opDeleteById, err, logAttrBookId, id.String())
	}

	return nil
}

func (library *ElasticLibraryManager) failed(operation string, err error, args ...any) error {
	if library.logger != nil {
		library.logger.Error(logMsgElasticFailed, append([]any{logAttrOperation, operation, logAttrError, err.Error()}, args...)...)
	}

	return fmt.Errorf("%s: %w", operation, err)
}
