// Package catalog decodes the JSON documents the backend keeps in text
// columns of AgentConfig: the product catalog and the integration settings.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrNotArray = errors.New("products document is not a JSON array")

type Product struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Price       float64         `json:"price" yaml:"price"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string          `json:"category,omitempty" yaml:"category,omitempty"`
	Images      []string        `json:"images,omitempty" yaml:"images,omitempty"`
	Raw         json.RawMessage `json:"-" yaml:"-"`
}

// ParseProducts decodes the products column. Empty and null documents give an
// empty list. A JSON string that itself holds the array is unwrapped once,
// which is how some rows were double-encoded by older backend versions.
func ParseProducts(text string) ([]Product, error) {
	doc, err := unwrap(text)
	if err != nil {
		return nil, err
	}
	if !doc.Exists() {
		return []Product{}, nil
	}
	if !doc.IsArray() {
		return nil, ErrNotArray
	}

	items := doc.Array()
	products := make([]Product, 0, len(items))
	for i, item := range items {
		p, err := productFromResult(item)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// ProductFromJSON decodes a single product object
func ProductFromJSON(raw string) (Product, error) {
	if !gjson.Valid(raw) {
		return Product{}, fmt.Errorf("invalid JSON")
	}
	return productFromResult(gjson.Parse(raw))
}

func unwrap(text string) (gjson.Result, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == "null" {
		return gjson.Result{}, nil
	}
	if !gjson.Valid(text) {
		return gjson.Result{}, fmt.Errorf("invalid JSON document")
	}

	doc := gjson.Parse(text)
	if doc.Type == gjson.String {
		inner := strings.TrimSpace(doc.String())
		if inner == "" || inner == "null" {
			return gjson.Result{}, nil
		}
		if !gjson.Valid(inner) {
			return gjson.Result{}, fmt.Errorf("invalid JSON inside string document")
		}
		doc = gjson.Parse(inner)
	}
	return doc, nil
}

func productFromResult(item gjson.Result) (Product, error) {
	if !item.IsObject() {
		return Product{}, fmt.Errorf("expected object, got %s", item.Type)
	}

	name := item.Get("name").String()
	if name == "" {
		name = item.Get("title").String()
	}

	return Product{
		ID:          item.Get("id").String(),
		Name:        strings.TrimSpace(name),
		Price:       parsePrice(item.Get("price")),
		Description: item.Get("description").String(),
		Category:    item.Get("category").String(),
		Images:      imagesOf(item),
		Raw:         json.RawMessage(item.Raw),
	}, nil
}

// parsePrice accepts numbers and strings in "1234.50", "1.234,50" or "1.234" form
func parsePrice(v gjson.Result) float64 {
	if v.Type != gjson.String {
		return v.Float()
	}
	s := strings.TrimSpace(v.String())
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") || thousandsGrouped(s) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// thousandsGrouped reports whether every dot in s separates groups of three
// digits, as in "1.500" or "12.345.678"
func thousandsGrouped(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups) < 2 {
		return false
	}
	head := groups[0]
	if len(head) == 0 || len(head) > 3 || head[0] == '0' || !digits(head) {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || !digits(g) {
			return false
		}
	}
	return true
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ProductImages returns every image URL referenced by a raw product object
func ProductImages(raw []byte) []string {
	return imagesOf(gjson.ParseBytes(raw))
}

func imagesOf(item gjson.Result) []string {
	var urls []string
	seen := make(map[string]bool)
	add := func(v gjson.Result) {
		u := v.String()
		if v.IsObject() {
			u = v.Get("url").String()
		}
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	add(item.Get("image"))
	add(item.Get("imageUrl"))
	item.Get("images").ForEach(func(_, v gjson.Result) bool {
		add(v)
		return true
	})
	item.Get("variations").ForEach(func(_, variation gjson.Result) bool {
		variation.Get("images").ForEach(func(_, v gjson.Result) bool {
			add(v)
			return true
		})
		return true
	})
	return urls
}

// Diff compares two catalogs by product ID. onlyLeft holds products missing
// from right and onlyRight the reverse. Both are sorted by ID. A product
// without an ID cannot be matched and is always reported on its own side.
func Diff(left, right []Product) (onlyLeft, onlyRight []Product) {
	index := func(ps []Product, unmatched *[]Product) map[string]Product {
		m := make(map[string]Product, len(ps))
		for _, p := range ps {
			if p.ID == "" {
				*unmatched = append(*unmatched, p)
				continue
			}
			m[p.ID] = p
		}
		return m
	}
	l, r := index(left, &onlyLeft), index(right, &onlyRight)

	for id, p := range l {
		if _, ok := r[id]; !ok {
			onlyLeft = append(onlyLeft, p)
		}
	}
	for id, p := range r {
		if _, ok := l[id]; !ok {
			onlyRight = append(onlyRight, p)
		}
	}

	byID := func(ps []Product) {
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
	}
	byID(onlyLeft)
	byID(onlyRight)
	return onlyLeft, onlyRight
}
