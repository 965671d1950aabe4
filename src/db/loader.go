package db

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olivere/elastic/v7"
	"golang.org/x/sync/errgroup"
)

// CSV columns, tab separated, first line is a header.
const (
	colID = iota
	colName
	colAddress
	colLon
	colLat
	colCategory
	colOpen24h
	colWheelchair
	colGoodForChildren
)

const parseWorkers = 8

// LoadData bulk indexes the restrooms listed in a TSV file.
func (es *ElasticStore) LoadData(ctx context.Context, pathData string) (int, error) {
	restrooms, err := es.readCSV(pathData)
	if err != nil {
		return 0, err
	}
	if len(restrooms) == 0 {
		return 0, nil
	}
	if err = es.saveRestrooms(ctx, restrooms); err != nil {
		return 0, err
	}
	return len(restrooms), nil
}

func (es *ElasticStore) readCSV(filePath string) ([]Restroom, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	if len(records) <= 1 {
		return nil, nil
	}
	records = records[1:]

	parsed := make([]*Restroom, len(records))
	var g errgroup.Group
	g.SetLimit(parseWorkers)
	for i, record := range records {
		i, record := i, record
		g.Go(func() error {
			r, err := parseRecord(record, func(column, value string) {
				es.logger.Warn("unrecognized restroom flag, treating as false",
					"line", i+2, "column", column, "value", value)
			})
			if err != nil {
				es.logger.Warn("skipping restroom row", "line", i+2, "error", err)
				return nil
			}
			parsed[i] = r
			return nil
		})
	}
	_ = g.Wait()

	restrooms := make([]Restroom, 0, len(parsed))
	for _, r := range parsed {
		if r != nil {
			restrooms = append(restrooms, *r)
		}
	}
	return restrooms, nil
}

// parseRecord builds a restroom from one row. badFlag is called for each flag
// column that is neither empty nor a boolean.
func parseRecord(record []string, badFlag func(column, value string)) (*Restroom, error) {
	if len(record) < colCategory {
		return nil, fmt.Errorf("want at least %d columns, got %d", colCategory, len(record))
	}
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	if field(colID) == "" {
		return nil, fmt.Errorf("empty id")
	}
	longitude, err := strconv.ParseFloat(field(colLon), 64)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	latitude, err := strconv.ParseFloat(field(colLat), 64)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}

	flag := func(i int, column string) bool {
		v := field(i)
		if v == "" {
			return false
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			badFlag(column, v)
			return false
		}
		return b
	}

	return &Restroom{
		ID:              field(colID),
		Name:            field(colName),
		Address:         field(colAddress),
		Category:        field(colCategory),
		Location:        &elastic.GeoPoint{Lat: latitude, Lon: longitude},
		Open24h:         flag(colOpen24h, "open_24h"),
		Wheelchair:      flag(colWheelchair, "wheelchair"),
		GoodForChildren: flag(colGoodForChildren, "good_for_children"),
	}, nil
}

func (es *ElasticStore) saveRestrooms(ctx context.Context, restrooms []Restroom) error {
	bulkRequest := es.Client.Bulk().Refresh("true")

	for _, r := range restrooms {
		req := elastic.NewBulkIndexRequest().Index(es.Index).Id(r.ID).Doc(r)
		bulkRequest = bulkRequest.Add(req)
	}

	bulkResponse, err := bulkRequest.Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}

	for _, item := range bulkResponse.Failed() {
		if item.Error != nil {
			es.logger.Warn("failed to index restroom", "id", item.Id, "reason", item.Error.Reason)
		}
	}
	return nil
}
