// Package postman pulls a published Postman collection and flattens its
// request tree into a list of endpoints.
package postman

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrNoItems = errors.New("collection has no item array")

type Endpoint struct {
	Folder      string `json:"folder,omitempty" yaml:"folder,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Method      string `json:"method" yaml:"method"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Fetch downloads a collection document
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch collection: status %d", resp.StatusCode)
	}
	return body, nil
}

// Load reads a collection exported to disk
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection file: %w", err)
	}
	return data, nil
}

// Endpoints walks the item tree depth first, in document order
func Endpoints(collection []byte) ([]Endpoint, error) {
	if !gjson.ValidBytes(collection) {
		return nil, fmt.Errorf("collection is not valid JSON")
	}
	doc := gjson.ParseBytes(collection)

	// the documenter API wraps the collection in a "collection" key
	if inner := doc.Get("collection"); inner.IsObject() {
		doc = inner
	}

	items := doc.Get("item")
	if !items.IsArray() {
		return nil, ErrNoItems
	}

	var endpoints []Endpoint
	walk(items, nil, &endpoints)
	return endpoints, nil
}

func walk(items gjson.Result, folders []string, out *[]Endpoint) {
	items.ForEach(func(_, item gjson.Result) bool {
		name := item.Get("name").String()
		if children := item.Get("item"); children.IsArray() {
			walk(children, append(folders[:len(folders):len(folders)], name), out)
			return true
		}

		request := item.Get("request")
		if !request.Exists() {
			return true
		}

		ep := Endpoint{
			Folder: strings.Join(folders, " / "),
			Name:   name,
			Method: "GET",
		}
		// a request may be given as a bare URL string
		if request.Type == gjson.String {
			ep.URL = request.String()
		} else {
			if m := request.Get("method").String(); m != "" {
				ep.Method = strings.ToUpper(m)
			}
			ep.URL = requestURL(request.Get("url"))
			ep.Description = description(request.Get("description"))
		}
		if ep.Description == "" {
			ep.Description = description(item.Get("description"))
		}

		*out = append(*out, ep)
		return true
	})
}

func requestURL(u gjson.Result) string {
	if u.Type == gjson.String {
		return u.String()
	}
	if raw := u.Get("raw").String(); raw != "" {
		return raw
	}
	// rebuild from parts when raw is missing
	var b strings.Builder
	if p := u.Get("protocol").String(); p != "" {
		b.WriteString(p + "://")
	}
	var host []string
	u.Get("host").ForEach(func(_, v gjson.Result) bool {
		host = append(host, v.String())
		return true
	})
	b.WriteString(strings.Join(host, "."))
	u.Get("path").ForEach(func(_, v gjson.Result) bool {
		b.WriteString("/" + v.String())
		return true
	})
	return b.String()
}

func description(d gjson.Result) string {
	if d.IsObject() {
		return strings.TrimSpace(d.Get("content").String())
	}
	return strings.TrimSpace(d.String())
}
