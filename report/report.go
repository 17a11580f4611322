// Copyright (c) 2019 Antonio Romito
// SPDX-License-Identifier: GPL-3.0-or-later

// Package report walks the paginated management API endpoints, gathers the
// complete record sets, and flattens them into string rows ready for table
// or CSV output.
package report

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/antonioromito/rhsm-api-client/rhsm"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// paginate drives a sequential offset/limit walk. fetch is called with the
// next offset and returns how many records the page held; the walk stops on
// an empty or short page.
func paginate(limit int, fetch func(offset int) (int, error)) error {
	offset := 0
	for {
		n, err := fetch(offset)
		if err != nil {
			return err
		}
		if n < limit {
			return nil
		}
		offset += limit
	}
}

// Systems retrieves every registered system on the account
func Systems(ctx context.Context, c *rhsm.Client, limit int) ([]rhsm.System, error) {
	var all []rhsm.System
	err := paginate(limit, func(offset int) (int, error) {
		page, err := c.Systems(ctx, limit, offset)
		if err != nil {
			return 0, err
		}
		all = append(all, page.Body...)
		return len(page.Body), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Allocations retrieves every subscription allocation on the account
func Allocations(ctx context.Context, c *rhsm.Client, limit int) ([]rhsm.Allocation, error) {
	var all []rhsm.Allocation
	err := paginate(limit, func(offset int) (int, error) {
		page, err := c.Allocations(ctx, limit, offset)
		if err != nil {
			return 0, err
		}
		all = append(all, page.Body...)
		return len(page.Body), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Subscriptions retrieves every subscription on the account
func Subscriptions(ctx context.Context, c *rhsm.Client, limit int) ([]rhsm.Subscription, error) {
	var all []rhsm.Subscription
	err := paginate(limit, func(offset int) (int, error) {
		page, err := c.Subscriptions(ctx, limit, offset)
		if err != nil {
			return 0, err
		}
		all = append(all, page.Body...)
		return len(page.Body), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Errata retrieves every published advisory visible to the account
func Errata(ctx context.Context, c *rhsm.Client, limit int) ([]rhsm.Erratum, error) {
	var all []rhsm.Erratum
	err := paginate(limit, func(offset int) (int, error) {
		page, err := c.Errata(ctx, limit, offset)
		if err != nil {
			return 0, err
		}
		all = append(all, page.Body...)
		return len(page.Body), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Packages retrieves every package installed on the given system
func Packages(ctx context.Context, c *rhsm.Client, systemUUID string, limit int) ([]rhsm.Package, error) {
	var all []rhsm.Package
	err := paginate(limit, func(offset int) (int, error) {
		page, err := c.Packages(ctx, systemUUID, limit, offset)
		if err != nil {
			return 0, err
		}
		all = append(all, page.Body...)
		return len(page.Body), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Transform takes a slice of record structs and flattens it into maps of
// field name -> string value, one per record
func Transform(records interface{}) ([]map[string]string, error) {
	v := reflect.ValueOf(records)
	if v.Kind() != reflect.Slice {
		return nil, errors.New("records must be a slice of report records")
	}

	rows := make([]map[string]string, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		// turn the record struct into a map
		recmap := map[string]interface{}{}
		err := mapstructure.Decode(v.Index(i).Interface(), &recmap)
		if err != nil {
			return nil, err
		}

		// Transform values into strings for easier parsing
		row := make(map[string]string, len(recmap))
		for _, key := range lo.Keys(recmap) {
			s, err := stringify(recmap[key])
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", key, err)
			}
			row[key] = s
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func stringify(v interface{}) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("unsupported field type %T", v)
	}
}

// ValidateInputFields takes the --fields flag string, splits it by comma,
// and then checks that each requested field exists on the record struct the
// report produces (e.g. &rhsm.System{} for the systems report)
func ValidateInputFields(fields string, prototype interface{}) ([]string, error) {
	// split by comma and trim whitespace
	values := strings.Split(fields, ",")
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
	}
	values = lo.Uniq(values)

	// convert to map
	recmap := map[string]interface{}{}
	err := mapstructure.Decode(prototype, &recmap)
	if err != nil {
		return []string{}, err
	}

	for _, value := range values {
		// make sure the field exists on the record struct
		proto, exists := recmap[value]
		if !exists {
			return []string{}, errors.New("field " + value + " does not exist in this report")
		}

		// and that we know how to render it
		if _, err := stringify(proto); err != nil {
			return []string{}, errors.New("field " + value + " is currently not supported")
		}
	}

	return values, nil
}
