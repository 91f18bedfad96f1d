package memstore

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-api/internal/utils"
)

// sortItems orders items by a BSON field path the same way a MongoDB sort
// would, breaking ties on _id. Items are compared on their BSON encoding so
// any stored field can be used.
func sortItems[T any](items []*T, spec string) error {
	field, desc, err := utils.ParseSort(spec)
	if err != nil {
		return err
	}

	type keyed struct {
		item *T
		key  interface{}
		id   interface{}
	}
	rows := make([]keyed, len(items))
	for i, it := range items {
		doc, err := toDoc(it)
		if err != nil {
			return err
		}
		rows[i] = keyed{item: it, key: lookup(doc, field), id: lookup(doc, "_id")}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		c := compareValues(rows[i].key, rows[j].key)
		if c == 0 {
			c = compareValues(rows[i].id, rows[j].id)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
	for i := range rows {
		items[i] = rows[i].item
	}
	return nil
}

func toDoc(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode for sort: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode for sort: %w", err)
	}
	return doc, nil
}

// lookup resolves a dotted path such as "patient_info.first_name".
func lookup(doc interface{}, path string) interface{} {
	cur := doc
	for _, part := range strings.Split(path, ".") {
		switch d := cur.(type) {
		case bson.M:
			cur = d[part]
		case bson.D:
			cur = d.Map()[part]
		default:
			return nil
		}
	}
	return cur
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// compareValues orders missing values first, then compares like types.
func compareValues(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case primitive.DateTime:
		if y, ok := b.(primitive.DateTime); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case primitive.ObjectID:
		if y, ok := b.(primitive.ObjectID); ok {
			return bytes.Compare(x[:], y[:])
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func anyContains(sub string, fields ...string) bool {
	for _, f := range fields {
		if containsFold(f, sub) {
			return true
		}
	}
	return false
}
